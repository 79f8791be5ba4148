package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimsift/internal/langdetect"
	"github.com/ppiankov/claimsift/internal/logger"
)

var (
	detectExplain bool
	detectFile    string
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect [text...]",
	Short: "Identify the language of a text as an IndicTrans2 code",
	Long: `Detect prints the IndicTrans2 language code (for example hin_Deva or eng_Latn)
of the given text. Devanagari text is told apart between Hindi, Marathi,
Sanskrit and Nepali using weighted keyword indicators; other scripts use a
statistical detector. Text is read from the arguments, --file, or stdin.

Example:
  claimsift detect "यह क्या है"
  claimsift detect --explain --file post.txt
  echo "The quick brown fox" | claimsift detect`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&detectExplain, "explain", false, "print the detection method, scores and indicators as JSON")
	detectCmd.Flags().StringVarP(&detectFile, "file", "f", "", "read text from a file")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	text, err := detectInput(cmd, args)
	if err != nil {
		return err
	}

	log := logger.NewNop()
	if verbose {
		if l, err := logger.New(logger.Config{Level: "debug"}); err == nil {
			log = l
		}
	}

	detector := langdetect.NewDetector(langdetect.NewWhatlangDetector(), log)
	out := cmd.OutOrStdout()

	if detectExplain {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(detector.Explain(text))
	}

	fmt.Fprintln(out, detector.Detect(text))
	return nil
}

func detectInput(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case detectFile != "":
		data, err := os.ReadFile(detectFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", detectFile, err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}
