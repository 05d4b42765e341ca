/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements durable key/value persistence for the scene document.
// Every backend stores opaque strings under the keys listed in keys.go; the document
// package owns serialization. Backends:
//   - FileStore: one JSON file per key with transactional writes and timestamped backups.
//   - SQLiteStore: embedded database at <data_dir>/scenecraft.sqlite with a kv table and a
//     revision history of the scene list.
//   - PostgresStore: kv rows keyed by (session, key) for shared sessions.
//   - MemoryStore: in-process map, used by tests and the "memory" backend.
package storage
