package cmd

import (
	"fmt"
	"os"

	"github.com/asplang/asp-sub000/internal/asp"
	"github.com/spf13/cobra"
)

var disasmSkipHeader bool

var disasmCmd = &cobra.Command{
	Use:   "disasm <image.aspe>",
	Short: "Print a compiled image's instruction stream",
	Long: `Disasm decodes a compiled ".aspe" image's instruction stream and
prints one line per instruction: offset, mnemonic, operand. By default it
skips the fixed 12-byte image header; pass --raw to disassemble arbitrary
bytes that don't carry one.`,
	Args: cobra.ExactArgs(1),
	RunE: disasmImage,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().BoolVar(&disasmSkipHeader, "raw", false, "treat the input as a bare instruction stream with no image header")
}

func disasmImage(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	code := image
	if !disasmSkipHeader {
		if len(image) < asp.ImageHeaderSize {
			return fmt.Errorf("image shorter than the %d-byte header", asp.ImageHeaderSize)
		}
		code = image[asp.ImageHeaderSize:]
	}

	instructions, err := asp.Disassemble(code)
	if err != nil {
		return err
	}
	fmt.Println(asp.FormatInstructions(instructions))
	return nil
}
