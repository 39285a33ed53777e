package tenant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		assertErr assert.ErrorAssertionFunc
	}{
		{name: "complete", req: Request{Domain: "total-dash.com", Path: "/"}, assertErr: assert.NoError},
		{name: "missing path", req: Request{Domain: "total-dash.com"}, assertErr: assert.Error},
		{name: "missing domain", req: Request{Path: "/acme"}, assertErr: assert.Error},
		{name: "missing both", req: Request{}, assertErr: assert.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			tt.assertErr(t, err)
			if err != nil {
				assert.ErrorIs(t, err, serviceerr.ErrInvalidRequest)
			}
		})
	}
}

func TestDomainContext_Validate(t *testing.T) {
	branding := &WhitelabelBranding{AgencyID: "a1"}

	assert.NoError(t, SuperAdminContext().Validate())
	assert.NoError(t, AgencyContext("acme").Validate())
	assert.NoError(t, ClientContext("acme", "widgetco", branding).Validate())

	assert.Error(t, DomainContext{Type: ContextAgency, ClientSlug: "widgetco"}.Validate())
	assert.Error(t, DomainContext{Type: ContextSuperAdmin, Whitelabel: branding}.Validate())
	assert.Error(t, DomainContext{Type: "tenant"}.Validate())
}

func TestDomainContext_MarshalJSON(t *testing.T) {
	t.Run("absent fields are null", func(t *testing.T) {
		b, err := json.Marshal(AgencyContext(""))
		require.NoError(t, err)
		assert.JSONEq(t, `{"contextType":"agency","agencySlug":null,"clientSlug":null,"whitelabelConfig":null}`, string(b))
	})

	t.Run("whitelabel client", func(t *testing.T) {
		dc := ClientContext("fiveleaf", "widgetco", &WhitelabelBranding{
			AgencyID:       "a1",
			AgencyName:     "Fiveleaf",
			LogoURL:        "https://cdn.example/logo.png",
			PrimaryColor:   "#112233",
			SecondaryColor: "#445566",
		})

		b, err := json.Marshal(dc)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"contextType": "client",
			"agencySlug": "fiveleaf",
			"clientSlug": "widgetco",
			"whitelabelConfig": {
				"agencyId": "a1",
				"agencyName": "Fiveleaf",
				"logoUrl": "https://cdn.example/logo.png",
				"primaryColor": "#112233",
				"secondaryColor": "#445566"
			}
		}`, string(b))

		var decoded DomainContext
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, dc, decoded)
	})
}

func TestDomainContext_clone(t *testing.T) {
	dc := ClientContext("acme", "", &WhitelabelBranding{AgencyName: "Acme"})
	c := dc.clone()
	c.Whitelabel.AgencyName = "changed"

	assert.Equal(t, "Acme", dc.Whitelabel.AgencyName)
}
