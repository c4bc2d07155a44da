package cli

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qretty/pkg/verify"
)

type verifyOpts struct {
	expected    string
	deteriorate bool
}

func newVerifyCmd() *cobra.Command {
	opts := verifyOpts{deteriorate: true}
	cmd := &cobra.Command{
		Use:   "verify [file...]",
		Short: "Check that images decode to the expected payload",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, &opts)
		},
	}
	cmd.Flags().StringVar(&opts.expected, "expected", "", "payload the images must decode to")
	cmd.Flags().BoolVar(&opts.deteriorate, "deteriorate", opts.deteriorate, "also score a warped, noisy copy")
	_ = cmd.MarkFlagRequired("expected")
	return cmd
}

func runVerify(cmd *cobra.Command, files []string, opts *verifyOpts) error {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()
	var v verify.Verifier

	printTitle(out, fmt.Sprintf("Expecting %q", opts.expected))
	failed := 0
	for _, path := range files {
		img, err := imaging.Open(path)
		if err != nil {
			printError(out, "%s: %v", path, err)
			failed++
			continue
		}
		logger.Debug("verifying", "file", path, "size", img.Bounds().Size())

		raw, det := score(&v, img, opts)
		if raw == verify.None {
			printError(out, "%s", path)
			failed++
		} else {
			printSuccess(out, "%s", path)
		}
		printReadability(out, "readability", raw)
		if opts.deteriorate {
			printReadability(out, "deteriorated", det)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images did not decode to %q", failed, len(files), opts.expected)
	}
	return nil
}

func score(v *verify.Verifier, img image.Image, opts *verifyOpts) (raw, det verify.Readability) {
	if opts.deteriorate {
		return v.VerifyQuality(img, opts.expected)
	}
	return v.Verify(img, opts.expected, false), verify.None
}
