// Package ledger records party-to-counterparty transactions and computes the
// net position of an entity as of a given date.
//
// The core functionalities include:
//   - Record Codec: decoding one delimited line (timestamp;party;counterparty;type;...)
//     into an immutable Record.
//   - Aggregation: folding records into a Summary (cash balance and asset
//     holdings), with signs depending on whether the entity was the party or
//     the counterparty of each transaction.
//   - Position Resolution: querying a store for both roles up to an inclusive,
//     possibly partial, date and combining both sides into one Summary.
//   - Ingestion: reading files of lines from a blob storage, sending each line
//     to a queue, and loading queued lines into the store.
//
// Storage, queue, blob and mirror collaborators are plain interfaces; concrete
// implementations live in the store, queue, blob and mirror packages.
package ledger
