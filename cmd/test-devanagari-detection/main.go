// Test program to demonstrate Devanagari language disambiguation
// This shows keyword scoring for related languages and the statistical fallback
package main

import (
	"fmt"
	"strings"

	"github.com/ppiankov/claimsift/internal/langdetect"
)

func main() {
	fmt.Println("=== Devanagari Detection Test ===")
	fmt.Println()

	samples := []struct {
		label string
		text  string
	}{
		{"Hindi", "यह क्या है? मैं घर में हूँ।"},
		{"Marathi", "मी घरी आहे आणि तू काय करतोस?"},
		{"Nepali", "म घर जाँदैछु, यो राम्रो छ।"},
		{"Sanskrit", "अहम् गच्छामि। सः पठति। किम् अस्ति?"},
		{"No indicators", "गंगा"},
		{"English", "The quick brown fox jumps over the lazy dog near the river bank."},
		{"Tamil", "நான் இன்று பள்ளிக்குச் செல்கிறேன்"},
		{"Too short", "a"},
	}

	detector := langdetect.NewDetector(langdetect.NewWhatlangDetector(), nil)

	for _, s := range samples {
		fmt.Printf("Testing: %s\n", s.label)
		fmt.Println(strings.Repeat("-", 60))

		exp := detector.Explain(s.text)
		fmt.Printf("  Text:   %s\n", s.text)
		fmt.Printf("  Code:   %s\n", detector.Detect(s.text))
		fmt.Printf("  Method: %s (%s)\n", exp.Method, exp.Language)

		switch exp.Method {
		case langdetect.MethodDevanagari:
			fmt.Printf("  Score:  %d from %d indicators\n", exp.Score, exp.IndicatorsUsed)
			for _, lang := range []string{"hi", "mr", "gu", "sa", "ne"} {
				if score, ok := exp.Scores[lang]; ok {
					fmt.Printf("     - %s: %d\n", lang, score)
				}
			}
		case langdetect.MethodStatistical:
			fmt.Printf("  Confidence: %.2f\n", exp.Confidence)
		}

		fmt.Println()
	}

	fmt.Println("=== Test Complete ===")
	fmt.Println("\nNote: ties between languages go to the earlier of hi, mr, gu, sa, ne.")
}
