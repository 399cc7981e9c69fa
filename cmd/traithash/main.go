package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"xdao.co/traithash/cidutil"
	"xdao.co/traithash/client"
	"xdao.co/traithash/config"
	"xdao.co/traithash/internal/logging"
	"xdao.co/traithash/traits"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "run":
		return cmdRun(ctx, args[1:], out, errOut)
	case "hash":
		return cmdHash(args[1:], in, out, errOut)
	case "payload-cid":
		return cmdPayloadCID(args[1:], in, out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "traithash: keyed BLAKE2b trait hashing client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  traithash run [--url <url>] [--timeout <dur>] [--dry-run] [--json] [--log-level <lvl>] [--log-format text|json]")
	fmt.Fprintln(w, "  traithash hash --key <key> <trait> [<trait> ...]")
	fmt.Fprintln(w, "  traithash hash --in <file|-> [--key <key>]")
	fmt.Fprintln(w, "  traithash payload-cid [--sha256] [--verify <cid>] <file|->")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - run GETs {\"traits\": [...], \"key\": \"...\"} from the URL and POSTs the digest array back")
	fmt.Fprintln(w, "  - defaults come from TRAITHASH_URL, TRAITHASH_TIMEOUT, TRAITHASH_MAX_BODY_BYTES,")
	fmt.Fprintln(w, "    TRAITHASH_LOG_LEVEL, TRAITHASH_LOG_FORMAT; flags override them")
	fmt.Fprintln(w, "  - digests are BLAKE2b with a 64-byte output keyed by the document key, hex-encoded")
	fmt.Fprintln(w, "  - payload-cid prints the blake2b-512 CIDv1 logged for each submitted payload;")
	fmt.Fprintln(w, "    with --verify it checks a logged CID against a payload file and prints OK")
	fmt.Fprintln(w, "  - logs go to stderr; stdout carries only command output")
}

// runFlagEnv maps run flags to the variables they override.
var runFlagEnv = map[string]string{
	"url":            config.Prefix + "URL",
	"timeout":        config.Prefix + "TIMEOUT",
	"max-body-bytes": config.Prefix + "MAX_BODY_BYTES",
	"log-level":      config.Prefix + "LOG_LEVEL",
	"log-format":     config.Prefix + "LOG_FORMAT",
}

func cmdRun(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var dryRun bool
	var asJSON bool
	fs.String("url", config.DefaultURL, "Trait endpoint URL (env TRAITHASH_URL)")
	fs.Duration("timeout", client.DefaultTimeout, "Per-request timeout (env TRAITHASH_TIMEOUT)")
	fs.Int64("max-body-bytes", client.DefaultMaxBodyBytes, "Response body size cap (env TRAITHASH_MAX_BODY_BYTES)")
	fs.String("log-level", "info", "debug|info|warn|error (env TRAITHASH_LOG_LEVEL)")
	fs.String("log-format", "text", "text|json (env TRAITHASH_LOG_FORMAT)")
	fs.BoolVar(&dryRun, "dry-run", false, "Fetch and hash, but do not POST")
	fs.BoolVar(&asJSON, "json", false, "Print a JSON receipt instead of the raw response")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: traithash run [flags]")
		return 2
	}

	// Explicit flags replace their variables before the environment is parsed.
	environ := config.Environ()
	fs.Visit(func(f *flag.Flag) {
		if name, ok := runFlagEnv[f.Name]; ok {
			environ[name] = f.Value.String()
		}
	})
	cfg, err := config.LoadFrom(environ)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 2
	}

	logger, err := logging.New(errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	c, err := client.New(cfg.URL, client.Options{
		Logger:       logger,
		Timeout:      cfg.Timeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
		DryRun:       dryRun,
	})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	res, err := c.Run(ctx)
	if err != nil {
		printError(errOut, err)
		return 1
	}

	if asJSON {
		return writeJSON(out, errOut, receipt{
			URL:        c.URL(),
			PayloadCID: res.PayloadCID,
			Submitted:  res.Submitted,
			Hashes:     res.Hashes,
			Response:   string(res.Response),
		})
	}
	if !res.Submitted {
		return writeJSON(out, errOut, res.Hashes)
	}
	_, _ = fmt.Fprintln(out, string(res.Response))
	return 0
}

type receipt struct {
	URL        string            `json:"url"`
	PayloadCID string            `json:"payload_cid"`
	Submitted  bool              `json:"submitted"`
	Hashes     traits.HashResult `json:"hashes"`
	Response   string            `json:"response,omitempty"`
}

func cmdHash(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var key string
	var inPath string
	fs.StringVar(&key, "key", "", "Hash key (overrides the document key with --in)")
	fs.StringVar(&inPath, "in", "", "Trait document file ('-' for stdin)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var set traits.TraitSet
	switch {
	case inPath != "":
		if fs.NArg() != 0 {
			fmt.Fprintln(errOut, "usage: traithash hash --in <file|-> [--key <key>]")
			return 2
		}
		b, err := readInput(inPath, in)
		if err != nil {
			fmt.Fprintf(errOut, "read --in: %v\n", err)
			return 1
		}
		if key != "" {
			b, err = withKey(b, key)
			if err != nil {
				fmt.Fprintf(errOut, "read --in: %v\n", err)
				return 1
			}
		}
		set, err = traits.DecodeTraitSet(b)
		if err != nil {
			printError(errOut, err)
			return 1
		}
	default:
		if key == "" || fs.NArg() == 0 {
			fmt.Fprintln(errOut, "usage: traithash hash --key <key> <trait> [<trait> ...]")
			return 2
		}
		set = traits.TraitSet{Traits: fs.Args(), Key: key}
		if err := set.Validate(); err != nil {
			printError(errOut, err)
			return 1
		}
	}

	hashes, err := traits.Hash(set)
	if err != nil {
		printError(errOut, err)
		return 1
	}
	return writeJSON(out, errOut, hashes)
}

func cmdPayloadCID(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("payload-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var sha bool
	var verify string
	fs.BoolVar(&sha, "sha256", false, "Use a sha2-256 multihash instead of blake2b-512")
	fs.StringVar(&verify, "verify", "", "Check that this CID addresses the payload")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: traithash payload-cid [--sha256] [--verify <cid>] <file|->")
		return 2
	}
	b, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read payload: %v\n", err)
		return 1
	}
	if verify != "" {
		match, err := cidutil.VerifyString(verify, b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid: %v\n", err)
			return 2
		}
		if !match {
			fmt.Fprintf(errOut, "mismatch: %s does not address %s\n", verify, fs.Arg(0))
			return 1
		}
		_, _ = fmt.Fprintln(out, "OK")
		return 0
	}
	id := cidutil.CIDv1RawBlake2b512(b)
	if sha {
		id = cidutil.CIDv1RawSHA256(b)
	}
	if id == "" {
		fmt.Fprintln(errOut, "failed to compute CID")
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// withKey replaces the document's key field, keeping everything else intact.
func withKey(doc []byte, key string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil || fields == nil {
		return doc, nil // DecodeTraitSet reports the schema error
	}
	k, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}
	fields["key"] = k
	return json.Marshal(fields)
}

func writeJSON(out io.Writer, errOut io.Writer, v any) int {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "encode output: %v\n", err)
		return 1
	}
	_, _ = out.Write(append(b, '\n'))
	return 0
}

func printError(w io.Writer, err error) {
	if rule := traits.RuleID(err); rule != "" {
		fmt.Fprintf(w, "error [%s]: %v\n", rule, err)
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
