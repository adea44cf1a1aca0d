package analysis

import (
	"fmt"
	"strings"

	"github.com/poiesic/boox/encoder"
)

// Strategy names accepted by the Lookup functions. "none" and the empty
// string select no strategy, leaving the encoder default in place.
const (
	None                = "none"
	Word                = "word"
	UAX29               = "uax29"
	NFKCName            = "nfkc"
	HTML                = "html"
	Snowball            = "snowball"
	SoundexName         = "soundex"
	DoubleMetaphoneName = "doublemetaphone"
)

// LookupNormalizer returns the normalizer registered under name.
func LookupNormalizer(name string) (encoder.NormalizerFunc, error) {
	switch strings.ToLower(name) {
	case "", None:
		return nil, nil
	case NFKCName:
		return NFKC, nil
	case HTML:
		return StripHTML, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNormalizer, name)
}

// LookupNormalizers chains the named normalizers in order.
// No names yields a nil normalizer.
func LookupNormalizers(names []string) (encoder.NormalizerFunc, error) {
	var fns []encoder.NormalizerFunc
	for _, name := range names {
		fn, err := LookupNormalizer(name)
		if err != nil {
			return nil, err
		}
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	switch len(fns) {
	case 0:
		return nil, nil
	case 1:
		return fns[0], nil
	}
	return Chain(fns...), nil
}

// LookupTokenizer returns the tokenizer registered under name.
func LookupTokenizer(name string) (encoder.TokenizerFunc, error) {
	switch strings.ToLower(name) {
	case "", None, Word:
		return encoder.WordTokenizer, nil
	case UAX29:
		return UAX29Tokenizer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTokenizer, name)
}

// LookupStemmer returns the stemmer registered under name.
func LookupStemmer(name string) (encoder.StemmerFunc, error) {
	switch strings.ToLower(name) {
	case "", None:
		return nil, nil
	case Snowball:
		return SnowballStemmer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStemmer, name)
}

// LookupPhonetic returns the encoder option selecting the phonetic strategy
// registered under name. Soundex yields one code per token and Double
// Metaphone two; "none" clears any phonetic strategy.
func LookupPhonetic(name string) (encoder.Option, error) {
	switch strings.ToLower(name) {
	case "", None:
		return encoder.WithPhonetic(nil), nil
	case SoundexName:
		return encoder.WithPhonetic(Soundex), nil
	case DoubleMetaphoneName, "double-metaphone":
		return encoder.WithMultiPhonetic(DoubleMetaphone), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPhonetic, name)
}
