package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/crudkit/internal/constants"
	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

// NewDownloadCommand creates the download command
func NewDownloadCommand() *cobra.Command {
	var (
		format   string
		outFile  string
		method   string
		dataFile string
		setPairs []string
	)

	cmd := &cobra.Command{
		Use:   "download PATH",
		Short: "Download a file",
		Long: `Download a file from an API path.

Formats:
  bytes          write the body as is
  base64         write the body encoded as base64
  decode-base64  decode a base64 body before writing it
  stream         copy the body without buffering it`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content interface{}

			if dataFile != "" || len(setPairs) > 0 {
				record, err := buildRecord(dataFile, setPairs)
				if err != nil {
					return err
				}

				content = record
			}

			transport, err := newTransport()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if outFile == "" && format != constants.DownloadFormatBase64 && isTerminal(out) {
				return constants.ErrOutputFileRequired
			}

			if outFile != "" {
				if outFile == "-" {
					outFile = ""
				} else {
					// #nosec G304 -- output path chosen by the user
					file, err := os.OpenFile(outFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DownloadFilePerm)
					if err != nil {
						return fmt.Errorf("failed to create output file: %w", err)
					}
					defer func() { _ = file.Close() }()

					out = file
				}
			}

			written, err := download(cmd.Context(), transport, out, format, strings.ToUpper(method), args[0], content)
			if err != nil {
				return fmt.Errorf("failed to download %s: %w", args[0], err)
			}

			if outFile != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", written, outFile)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", constants.DownloadFormatBytes, "bytes, base64, decode-base64 or stream")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML file sent with the request")
	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "request field as KEY=VALUE (repeatable)")

	return cmd
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && term.IsTerminal(int(file.Fd())) // #nosec G115 -- file descriptors fit in int
}

// download fetches path in format and writes the result to w.
func download(ctx context.Context, t crudkit.Transport, w io.Writer, format, method, path string, content interface{}) (int64, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case constants.DownloadFormatBytes:
		data, err = crudkit.SendJSONDownloadBlobAsBytes(ctx, t, method, path, content)
	case constants.DownloadFormatBase64:
		var encoded string

		encoded, err = crudkit.SendJSONDownloadBlobAsBase64(ctx, t, method, path, content)
		data = []byte(encoded)
	case constants.DownloadFormatDecodeBase64:
		data, err = crudkit.SendJSONDownloadBase64AsBytes(ctx, t, method, path, content)
	case constants.DownloadFormatStream:
		body, err := crudkit.SendJSONDownloadBlobAsStream(ctx, t, method, path, content)
		if err != nil {
			return 0, err
		}
		defer func() { _ = body.Close() }()

		written, err := io.Copy(w, body)
		if err != nil {
			return written, fmt.Errorf("failed to write download: %w", err)
		}

		return written, nil
	default:
		return 0, fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}

	if err != nil {
		return 0, err
	}

	written, err := w.Write(data)
	if err != nil {
		return int64(written), fmt.Errorf("failed to write download: %w", err)
	}

	return int64(written), nil
}
