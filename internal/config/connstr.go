package config

import (
	"fmt"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"
)

func MakeConnStr(conf Database) (string, error) {
	host, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return "", fmt.Errorf("loading db host: %w", err)
	}

	user, err := commoncfg.LoadValueFromSourceRef(conf.User)
	if err != nil {
		return "", fmt.Errorf("loading db user: %w", err)
	}

	password, err := commoncfg.LoadValueFromSourceRef(conf.Password)
	if err != nil {
		return "", fmt.Errorf("loading db password: %w", err)
	}

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s",
		host, user, string(password), conf.Name, conf.Port)
	if conf.SSLMode != "" {
		connStr += " sslmode=" + conf.SSLMode
	}

	return connStr, nil
}

// MakeValkeyOptions resolves the valkey client options. ok is false when no
// host is configured.
func MakeValkeyOptions(conf ValKey) (_ valkey.ClientOption, ok bool, _ error) {
	if conf.Host.Source == "" {
		return valkey.ClientOption{}, false, nil
	}

	host, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return valkey.ClientOption{}, false, fmt.Errorf("loading valkey host: %w", err)
	}
	if len(host) == 0 {
		return valkey.ClientOption{}, false, nil
	}

	opts := valkey.ClientOption{
		InitAddress: []string{string(host)},
	}

	if conf.User.Source != "" {
		user, err := commoncfg.LoadValueFromSourceRef(conf.User)
		if err != nil {
			return valkey.ClientOption{}, false, fmt.Errorf("loading valkey username: %w", err)
		}
		opts.Username = string(user)
	}

	if conf.Password.Source != "" {
		password, err := commoncfg.LoadValueFromSourceRef(conf.Password)
		if err != nil {
			return valkey.ClientOption{}, false, fmt.Errorf("loading valkey password: %w", err)
		}
		opts.Password = string(password)
	}

	if conf.SecretRef.Type == commoncfg.MTLSSecretType {
		tlsConfig, err := commoncfg.LoadMTLSConfig(&conf.SecretRef.MTLS)
		if err != nil {
			return valkey.ClientOption{}, false, fmt.Errorf("loading valkey mTLS config from secret ref: %w", err)
		}
		opts.TLSConfig = tlsConfig
	}

	return opts, true, nil
}
