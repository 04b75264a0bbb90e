package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	controller "github.com/m-mizutani/ghtrigger/pkg/controller/http"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSign() *cli.Command {
	var (
		secret string
		file   string
		verify string
	)

	return &cli.Command{
		Name:  "sign",
		Usage: "Compute or verify the X-Hub-Signature of a payload",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "secret",
				Usage:       "Webhook secret shared with GitHub",
				Required:    true,
				Destination: &secret,
				Sources:     cli.EnvVars("GHTRIGGER_SECRET"),
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Payload file; reads stdin when omitted",
				Destination: &file,
			},
			&cli.StringFlag{
				Name:        "verify",
				Usage:       "Signature to check against the payload instead of printing one",
				Destination: &verify,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			body, err := readPayload(c.Root().Reader, file)
			if err != nil {
				return err
			}
			return signPayload(c.Root().Writer, secret, body, verify, c.IsSet("verify"))
		},
	}
}

func readPayload(stdin io.Reader, path string) ([]byte, error) {
	if path == "" {
		if stdin == nil {
			stdin = os.Stdin
		}
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read payload from stdin")
		}
		return body, nil
	}

	body, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read payload file", goerr.V("path", path))
	}
	return body, nil
}

// signPayload prints the signature of body, or checks signature against it
// using the same rules as the webhook listener
func signPayload(w io.Writer, secret string, body []byte, signature string, doVerify bool) error {
	if w == nil {
		w = os.Stdout
	}
	digest := controller.ComputeDigest(secret, body)

	if !doVerify {
		_, err := fmt.Fprintf(w, "%s=%s\n", controller.SignatureAlgorithm, digest)
		return err
	}

	if err := controller.VerifySignature(secret, signature, digest, true); err != nil {
		_, _ = color.New(color.FgRed, color.Bold).Fprintf(w, "NG: %s\n", err.Error())
		return goerr.Wrap(err, "signature verification failed")
	}
	_, err := color.New(color.FgGreen, color.Bold).Fprintln(w, "OK: signature matches payload")
	return err
}
