// Command csp-header parses a Content-Security-Policy header value, applies
// optional mutations, and prints the normalized result. It is a thin shell
// around the csp package for inspecting and reworking deployed headers.
//
//	echo "default-src 'self'; script-src 'none'" | csp-header -script-nonce
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/projectdiscovery/gologger"

	"github.com/secinto/go-csp-header/csp"
)

type options struct {
	header      string
	configFile  string
	scriptNonce bool
	styleNonce  bool
	sorted      bool
}

func parseOptions() *options {
	opts := &options{}
	flag.StringVar(&opts.header, "header", "", "header value to parse (default: read stdin)")
	flag.StringVar(&opts.configFile, "config", "", "YAML policy preset to apply")
	flag.BoolVar(&opts.scriptNonce, "script-nonce", false, "open script-src with a fresh nonce")
	flag.BoolVar(&opts.styleNonce, "style-nonce", false, "open style-src with a fresh nonce")
	flag.BoolVar(&opts.sorted, "sort", false, "emit directives in canonical review order")
	flag.Parse()
	return opts
}

func main() {
	opts := parseOptions()

	header := opts.header
	if header == "" && opts.configFile == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			gologger.Fatal().Msgf("Could not read header from stdin: %s\n", err)
		}
		header = strings.TrimSpace(string(raw))
	}

	policy := csp.ParsePolicy(header)

	if opts.configFile != "" {
		cfg, err := csp.LoadConfig(opts.configFile)
		if err != nil {
			gologger.Fatal().Msgf("Could not load policy preset: %s\n", err)
		}
		policy = cfg.Apply(policy)
	}

	if opts.scriptNonce {
		policy.AllowInjectedScript(mustNonce("script"))
	}
	if opts.styleNonce {
		policy.AllowInjectedStyle(mustNonce("style"))
	}

	if opts.sorted {
		policy = policy.Sorted()
	}

	fmt.Println(policy.String())
}

// mustNonce generates a nonce or falls back to 'unsafe-inline' injection by
// returning the empty string, as the injection API specifies for an absent
// nonce.
func mustNonce(kind string) string {
	nonce, err := csp.NewNonce()
	if err != nil {
		gologger.Warning().Msgf("No %s nonce available, falling back to 'unsafe-inline': %s\n", kind, err)
		return ""
	}
	gologger.Info().Msgf("Generated %s nonce: %s\n", kind, nonce)
	return nonce
}
