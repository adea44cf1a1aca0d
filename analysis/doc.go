// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package analysis provides text analysis strategies for the encoder:
// Unicode and HTML normalizers, a UAX #29 word tokenizer, stop word
// filtering, Snowball stemming, and Soundex or Double Metaphone phonetic codes.
//
// Strategies are looked up by the names used in configuration files:
//
//	normalizer, err := analysis.LookupNormalizer("nfkc")
//	tokenizer, err := analysis.LookupTokenizer("uax29")
//	stemmer, err := analysis.LookupStemmer("snowball")
//	phonetic, err := analysis.LookupPhonetic("doublemetaphone")
package analysis
