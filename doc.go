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


// Package boox is an in-memory full-text search engine.
//
// An Engine indexes datasets into a multi-field inverted index keyed by
// phonetic codes and ranks queries with TF-IDF, either as a plain sum or as
// the cosine between sparse query and document vectors. Typo and
// pronunciation tolerance come from the encoder strategies supplied at
// construction; see packages encoder and analysis.
//
// Basic use:
//
//	engine, err := boox.New(core.Config{
//		Features:   []string{"title", "content"},
//		Attributes: []string{"url"},
//	})
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	_ = engine.AddDocumentsSync(datasets)
//	results, err := engine.SearchSync("lorem ipsum", nil)
//
// Results carry highlighted previews (result.SearchResult.Context and KWIC),
// and Paginate slices a ranking into pages. State and SetState snapshot and
// restore the whole index; package storage persists snapshots to files or
// BadgerDB.
package boox
