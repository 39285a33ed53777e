// Package verify confirms ownership of whitelabel domains through DNS TXT
// records.
package verify

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	DefaultRecordPrefix = "_total-dash-verification"
	DefaultDNSServer    = "1.1.1.1:53"
	DefaultTimeout      = 5 * time.Second
)

// DNSChecker looks up the verification TXT record of a domain.
type DNSChecker struct {
	client *dns.Client
	server string
	prefix string
}

func NewDNSChecker(server, prefix string, timeout time.Duration) *DNSChecker {
	if server == "" {
		server = DefaultDNSServer
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	if prefix == "" {
		prefix = DefaultRecordPrefix
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &DNSChecker{
		client: &dns.Client{Net: "udp", Timeout: timeout},
		server: server,
		prefix: prefix,
	}
}

// RecordName returns the name the agency has to publish the token under.
func (c *DNSChecker) RecordName(domain string) string {
	return c.prefix + "." + strings.TrimSuffix(domain, ".")
}

// Check reports whether one of the TXT records of the verification name
// equals token. A non-existent name is not an error.
func (c *DNSChecker) Check(ctx context.Context, domain, token string) (bool, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(c.RecordName(domain)), dns.TypeTXT)
	msg.RecursionDesired = true

	in, _, err := c.client.ExchangeContext(ctx, msg, c.server)
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", c.server, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected response code %s", dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		if strings.Join(txt.Txt, "") == token {
			return true, nil
		}
	}

	return false, nil
}
