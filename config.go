package bitvec

import (
	"fmt"
	"io"
	"os"
)

// BitsPerByte is the number of bits in a byte of storage
const BitsPerByte = 8

// Config describes the layout of a bit vector: how many bits it holds
// and how wide its storage words are.  It is what a serialized header
// records and what the command line tool reports.
type Config struct {
	// The number of addressable bits
	Size uint
	// The width of a storage word, 32 or 64
	WordBits uint
}

// DetermineConfig generates a Config for size bits stored in words of
// wordBits width.  Only 32 and 64 bit words are supported.
func DetermineConfig(size uint, wordBits uint) (Config, error) {
	switch wordBits {
	case 32, 64:
	default:
		return Config{}, fmt.Errorf("word width of %d bits: %w", wordBits, ErrWordSizeMismatch)
	}
	return Config{Size: size, WordBits: wordBits}, nil
}

// ConfigOf reports the layout of v
func ConfigOf[W Word](v *Vector[W]) Config {
	return Config{Size: v.Size(), WordBits: wordBits[W]()}
}

// WordCount reports the number of words needed to hold Size bits
func (c *Config) WordCount() uint {
	if c.WordBits == 0 {
		return 0
	}
	n := c.Size / c.WordBits
	if c.Size%c.WordBits != 0 {
		n++
	}
	return n
}

// checkWordCount verifies that count stored words hold exactly Size bits
func (c *Config) checkWordCount(count uint64) error {
	need := uint64(c.WordCount())
	if count < need {
		return fmt.Errorf("%d bits do not fit in %d stored words of %d bits: %w", c.Size, count, c.WordBits, ErrCorrupt)
	}
	if count > need {
		return fmt.Errorf("stored word count %d exceeds the %d words needed for %d bits: %w", count, need, c.Size, ErrCorrupt)
	}
	return nil
}

// BytesRequired reports the amount of word storage the vector occupies
// in ram or, uncompressed, on disk (excluding the header)
func (c *Config) BytesRequired() uint {
	return c.WordCount() * (c.WordBits / BitsPerByte)
}

// PaddingBits reports how many bits of the last word lie beyond Size
func (c *Config) PaddingBits() uint {
	return c.WordCount()*c.WordBits - c.Size
}

// ExplainIndent will print an indented summary of the configuration to w
func (c *Config) ExplainIndent(w io.Writer, indent string) {
	fmt.Fprintf(w, "%s%d bits addressable\n", indent, c.Size)
	fmt.Fprintf(w, "%s%d words of %d bits\n", indent, c.WordCount(), c.WordBits)
	fmt.Fprintf(w, "%s%d bits of padding in the last word\n", indent, c.PaddingBits())
	fmt.Fprintf(w, "%s   %s storage size expected\n", indent, humanBytes(c.BytesRequired()))
}

// Explain will print a summary of the configuration to stdout
func (c *Config) Explain() {
	c.ExplainIndent(os.Stdout, "")
}

func humanBytes(bytes uint) string {
	v := float64(bytes)
	suffix := "bytes"
	if v > 1024 {
		v /= 1024.
		suffix = "KB"
		if v > 1024. {
			suffix = "MB"
			v /= 1024.0
			if v > 1024. {
				suffix = "GB"
				v /= 1024.
			}
		}
	}
	if v < 10 {
		return fmt.Sprintf("%0.2f %s", v, suffix)
	} else if v < 100 {
		return fmt.Sprintf("%0.1f %s", v, suffix)
	} else {
		return fmt.Sprintf("%0.0f %s", v, suffix)
	}
}
