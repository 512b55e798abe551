package config

const (
	// Mainnet constants.
	MainnetLedgerPublicRPCURL      = "https://doublezero-mainnet-beta.rpcpool.com/db336024-e7a8-46b1-80e5-352dd77060ab"
	MainnetServiceabilityProgramID = "ser2VaTMAcYTaauMrTSfSrxBaUDq7BLNs2xfUugTAGv"

	// Testnet constants.
	TestnetLedgerPublicRPCURL      = "https://doublezerolocalnet.rpcpool.com/8a4fd3f4-0977-449f-88c7-63d4b0f10f16"
	TestnetServiceabilityProgramID = "DZtnuQ839pSaDMFG5q1ad2V95G82S5EC4RrB3Ndw2Heb"

	// Devnet constants.
	DevnetLedgerPublicRPCURL      = "https://doublezerolocalnet.rpcpool.com/8a4fd3f4-0977-449f-88c7-63d4b0f10f16"
	DevnetServiceabilityProgramID = "GYhQDKuESrasNZGyhMJhGYFtbzNijYhcrN9poSqCQVah"

	// Localnet constants.
	LocalnetLedgerPublicRPCURL      = "http://localhost:8899"
	LocalnetServiceabilityProgramID = "7CTniUa88iJKUHTrCkB4TjAoG6TD7AMivhQeuqN2LPtX"
)
