package cli

import (
	"fmt"

	sc "github.com/dz-network/doublezero/sdk/serviceability/go"
)

func findLocationByCode(locations []sc.Location, code string) (sc.Location, error) {
	for _, l := range locations {
		if l.Code == code {
			return l, nil
		}
	}
	return sc.Location{}, fmt.Errorf("location %q not found", code)
}

func findExchangeByCode(exchanges []sc.Exchange, code string) (sc.Exchange, error) {
	for _, e := range exchanges {
		if e.Code == code {
			return e, nil
		}
	}
	return sc.Exchange{}, fmt.Errorf("exchange %q not found", code)
}

func findContributorByCode(contributors []sc.Contributor, code string) (sc.Contributor, error) {
	for _, c := range contributors {
		if c.Code == code {
			return c, nil
		}
	}
	return sc.Contributor{}, fmt.Errorf("contributor %q not found", code)
}

func findLinkByCode(links []sc.Link, code string) (sc.Link, error) {
	for _, l := range links {
		if l.Code == code {
			return l, nil
		}
	}
	return sc.Link{}, fmt.Errorf("link %q not found", code)
}

func findMulticastGroupByCode(groups []sc.MulticastGroup, code string) (sc.MulticastGroup, error) {
	for _, g := range groups {
		if g.Code == code {
			return g, nil
		}
	}
	return sc.MulticastGroup{}, fmt.Errorf("multicast group %q not found", code)
}

func findTenantByCode(tenants []sc.Tenant, code string) (sc.Tenant, error) {
	for _, t := range tenants {
		if t.Code == code {
			return t, nil
		}
	}
	return sc.Tenant{}, fmt.Errorf("tenant %q not found", code)
}

func findUserByPubkey(users []sc.User, pubkey string) (sc.User, error) {
	for _, u := range users {
		if pubkeyString(u.PubKey) == pubkey {
			return u, nil
		}
	}
	return sc.User{}, fmt.Errorf("user %q not found", pubkey)
}
