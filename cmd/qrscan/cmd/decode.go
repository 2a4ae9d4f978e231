package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ericlevine/qrscan/internal/imageio"
	"github.com/ericlevine/qrscan/internal/scan"
)

func newDecodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <image> [image...]",
		Short: "Decode QR codes in image files",
		Long: `Decode the QR code in each image file and print its contents.

Supported formats: BMP, GIF, JPEG, PNG, TIFF and WebP.

Examples:
  qrscan decode code.png
  qrscan decode --try-harder --binarizer hybrid photo.jpg
  qrscan decode --format yaml a.png b.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.Bool("try-harder", false, "scan every few rows instead of deriving the stride from the image height")
	flags.Bool("pure", false, "the image is an unrotated symbol with a quiet zone and nothing else")
	flags.Bool("inverted", false, "also try light modules on a dark background")
	flags.Bool("mirrored", false, "also try the mirror image of the symbol")
	flags.String("charset", "", "character set for byte segments without an ECI")
	flags.StringSlice("binarizer", []string{"hybrid", "histogram"}, "binarizers to try, in order (hybrid, histogram)")
	flags.Int("max-dimension", 2048, "downscale images larger than this many pixels on either side (0 disables)")
	flags.Duration("timeout", 10*time.Second, "give up on an image after this long (0 disables)")
	flags.StringP("format", "f", "text", "output format (text, json, yaml)")

	a.bind("decode.try_harder", flags.Lookup("try-harder"))
	a.bind("decode.pure_barcode", flags.Lookup("pure"))
	a.bind("decode.also_inverted", flags.Lookup("inverted"))
	a.bind("decode.also_mirrored", flags.Lookup("mirrored"))
	a.bind("decode.character_set", flags.Lookup("charset"))
	a.bind("decode.binarizers", flags.Lookup("binarizer"))
	a.bind("decode.max_dimension", flags.Lookup("max-dimension"))
	a.bind("decode.timeout", flags.Lookup("timeout"))
	a.bind("output.format", flags.Lookup("format"))
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, args []string) error {
	scanner, err := scan.New(a.cfg.Decode, scan.WithLogger(a.logger))
	if err != nil {
		return err
	}

	reports := make([]scan.Report, 0, len(args))
	failed := 0
	for _, path := range args {
		img, err := imageio.Load(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: error: %v\n", path, err)
			failed++
			continue
		}
		result, err := scanner.Scan(cmd.Context(), img)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}
		reports = append(reports, scan.NewReport(path, result))
	}

	if err := writeReports(cmd.OutOrStdout(), a.cfg.Output.Format, reports, len(args) > 1); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be decoded", failed, len(args))
	}
	return nil
}

func writeReports(w io.Writer, format string, reports []scan.Report, withSource bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, r := range reports {
			if withSource {
				if _, err := fmt.Fprintf(w, "%s: ", r.Source); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w, r.Text); err != nil {
				return err
			}
		}
		return nil
	}
}
