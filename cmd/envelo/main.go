package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/envelo/envelo-go/algorithms"
	"github.com/envelo/envelo-go/config"
	"github.com/envelo/envelo-go/contracts"
	"github.com/envelo/envelo-go/envelope"
	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "envelo",
		Short: "Encode, decode, and inspect envelope messages",
		Long: `Envelo is a CLI tool for working with the envelope codec offline.
It encodes payloads the way a publishing client would, decodes bodies
back into raw payloads, and pretty-prints codec metadata attributes.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
	}

	// Global flags
	var configPath string

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML codec configuration file")

	// Inspect command
	inspectCmd := &cobra.Command{
		Use:   "inspect <metadata>",
		Short: "Parse and pretty-print a codec metadata attribute value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := envelope.ParseMetadata(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse metadata: %w", err)
			}

			printMetadata(meta)
			return nil
		},
	}

	// Encode command
	var (
		compression string
		encoding    string
		checksum    string
	)
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a payload read from stdin",
		Long: `Encode reads a raw payload from stdin and writes the prepared body to
stdout. The codec metadata attribute value is written to stderr so the
body stays pipeable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine(configPath, compression, encoding, checksum)
			if err != nil {
				return err
			}

			payload, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}

			encoded, err := engine.EncodeMessage(contracts.NewMessage(string(payload)))
			if err != nil {
				return fmt.Errorf("failed to encode payload: %w", err)
			}

			fmt.Fprintf(os.Stderr, "%s: %s\n", envelope.MetaAttribute, encoded.Attributes[envelope.MetaAttribute])
			fmt.Print(encoded.Body)
			return nil
		},
	}
	encodeCmd.Flags().StringVarP(&compression, "compression", "c", "", "Compression algorithm (zstd, snappy, gzip, none)")
	encodeCmd.Flags().StringVarP(&encoding, "encoding", "e", "", "Encoding algorithm (base64, base64-std, none)")
	encodeCmd.Flags().StringVarP(&checksum, "checksum", "k", "", "Checksum algorithm (md5, sha256, none)")

	// Decode command
	var meta string
	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode an encoded body read from stdin",
		Long: `Decode reads an encoded body from stdin and writes the raw payload to
stdout, driven by the metadata value passed with --meta. Without --meta
the body passes through untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}

			msg := contracts.NewMessage(string(body))
			if meta != "" {
				msg = msg.WithAttribute(envelope.MetaAttribute, meta)
			}

			decoded, err := envelope.NewEngine().DecodeMessage(msg)
			if err != nil {
				return fmt.Errorf("failed to decode payload: %w", err)
			}

			fmt.Print(decoded.Body)
			return nil
		},
	}
	decodeCmd.Flags().StringVarP(&meta, "meta", "m", "", "Codec metadata attribute value describing the body")

	// Add all commands
	rootCmd.AddCommand(inspectCmd, encodeCmd, decodeCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// buildEngine merges the optional config file with command-line overrides.
func buildEngine(configPath, compression, encoding, checksum string) (*envelope.Engine, error) {
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if compression != "" {
		cfg.Compression = compression
	}
	if encoding != "" {
		cfg.Encoding = encoding
	}
	if checksum != "" {
		cfg.Checksum = checksum
	}

	return cfg.NewEngine()
}

// Output formatting functions

func printMetadata(meta envelope.Metadata) {
	cfg := meta.Configuration
	fmt.Printf("%-12s %d\n", "Version:", cfg.Version)
	fmt.Printf("%-12s %s\n", "Compression:", cfg.Compression)
	fmt.Printf("%-12s %s\n", "Encoding:", cfg.Encoding)
	if effective := cfg.Effective().Encoding; effective != cfg.Encoding {
		fmt.Printf("%-12s %s\n", "Effective:", effective)
	}
	fmt.Printf("%-12s %s\n", "Checksum:", cfg.Checksum)
	if cfg.Checksum != algorithms.NoChecksum {
		fmt.Printf("%-12s %s\n", "Digest:", meta.ChecksumValue)
	}
	fmt.Printf("%-12s %d\n", "Raw length:", meta.RawLength)
	fmt.Printf("%-12s %s\n", "Canonical:", meta.Format())
}
