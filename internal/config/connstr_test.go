package config

import (
	"fmt"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedded(v string) commoncfg.SourceRef {
	return commoncfg.SourceRef{Source: "embedded", Value: v}
}

func invalid(v string) commoncfg.SourceRef {
	return commoncfg.SourceRef{Source: "invalid-source", Value: v}
}

func TestMakeConnStr(t *testing.T) {
	tests := []struct {
		name        string
		conf        Database
		wantConnStr string
		assertErr   assert.ErrorAssertionFunc
	}{
		{
			name: "Make connection string",
			conf: Database{
				Host:     embedded("my_host"),
				User:     embedded("my_user"),
				Password: embedded("my_password"),
				Name:     "my_db_name",
				Port:     "5432",
			},
			wantConnStr: "host=my_host user=my_user password=my_password dbname=my_db_name port=5432",
			assertErr:   assert.NoError,
		},
		{
			name: "Make connection string with ssl mode",
			conf: Database{
				Host:     embedded("my_host"),
				User:     embedded("my_user"),
				Password: embedded("my_password"),
				Name:     "my_db_name",
				Port:     "5432",
				SSLMode:  "disable",
			},
			wantConnStr: "host=my_host user=my_user password=my_password dbname=my_db_name port=5432 sslmode=disable",
			assertErr:   assert.NoError,
		},
		{
			name: "Error - invalid host source",
			conf: Database{
				Host:     invalid("my_host"),
				User:     embedded("my_user"),
				Password: embedded("my_password"),
			},
			assertErr: assert.Error,
		},
		{
			name: "Error - invalid user source",
			conf: Database{
				Host:     embedded("my_host"),
				User:     invalid("my_user"),
				Password: embedded("my_password"),
			},
			assertErr: assert.Error,
		},
		{
			name: "Error - invalid password source",
			conf: Database{
				Host:     embedded("my_host"),
				User:     embedded("my_user"),
				Password: invalid("my_password"),
			},
			assertErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connStr, err := MakeConnStr(tt.conf)
			if !tt.assertErr(t, err, fmt.Sprintf("MakeConnStr() error = %v", err)) || err != nil {
				return
			}

			assert.Equal(t, tt.wantConnStr, connStr, "MakeConnStr() = %v", connStr)
		})
	}
}

func TestMakeValkeyOptions(t *testing.T) {
	t.Run("disabled without host", func(t *testing.T) {
		_, ok, err := MakeValkeyOptions(ValKey{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("with credentials", func(t *testing.T) {
		opts, ok, err := MakeValkeyOptions(ValKey{
			Host:     embedded("valkey:6379"),
			User:     embedded("resolver"),
			Password: embedded("secret"),
		})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"valkey:6379"}, opts.InitAddress)
		assert.Equal(t, "resolver", opts.Username)
		assert.Equal(t, "secret", opts.Password)
	})

	t.Run("invalid host source", func(t *testing.T) {
		_, _, err := MakeValkeyOptions(ValKey{Host: invalid("valkey:6379")})
		assert.Error(t, err)
	})
}
