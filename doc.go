// Package flagship provides the bookkeeping core of a phone-resale shop: the
// devices it buys, the sales it makes (cash or installments), the money it has
// on hand and the exchange rates it quotes.
//
// The core functionalities include:
//   - Entity model: Device, Sale and Installment records gathered in a single
//     State value, persisted wholesale as a versioned JSON snapshot.
//   - Commands: every change to the State is a Command applied atomically,
//     producing a new State or an error and no change at all.
//   - Ledger engine: pure functions deriving stock value, debtors, debt,
//     profit and profit series from a State.
//   - Collaborators: local snapshot stores, a remote blob store for backups, a
//     rate lookup service and a text advice service, all behind interfaces.
//   - Shop: a controller owning the State in a single goroutine, running the
//     periodic rate refresh and the debounced remote sync.
//
// This package serves as the foundational logic for the `fsh` command-line
// tool and its HTTP API.
package flagship
