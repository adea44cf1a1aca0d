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


// Package search scores normalized queries against an inverted index.
//
// An Executor encodes the query, accumulates per-document TF-IDF
// contributions and ranks the candidates. Two scoring modes exist:
//   - plain: the sum of tf*idf over every matched code and field
//   - vector: the cosine between the query's and the document's TF-IDF vectors
//
// An optional matching coefficient adds a share of the best raw score to each
// candidate, letting callers blend in signals that live outside the index.
// When the Executor owns a worker pool, both the per-code accumulation and the
// coefficient calls are spread across it; results are identical to the
// sequential path.
package search
