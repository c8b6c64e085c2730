package flagship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// This file persists the State as one JSON snapshot per storage key.
//
// Every snapshot carries a "schemaVersion". Older snapshots were written
// without it, under a key that named their version (flagship_hub_v5, ...);
// their version is taken from the key. Decoding upgrades the raw JSON object
// one version at a time, then decodes it into a State.

// SchemaVersion is the version written by EncodeState.
const SchemaVersion = 7

// CurrentKey is the storage key of the current snapshot.
const CurrentKey = "flagship_hub_v7"

// LegacyKeys are the keys older releases wrote to, newest first.
var LegacyKeys = []string{"flagship_hub_v6", "flagship_hub_v5", "flagship_hub_v4", "flagship_hub_v3", "flagship_hub_v2", "flagship_hub"}

const attrVersion = "schemaVersion"

// KeyVersion returns the schema version implied by a storage key.
func KeyVersion(key string) int {
	_, v, ok := strings.Cut(key, "_v")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 1
	}
	return n
}

// EncodeState writes st as a versioned JSON snapshot.
func EncodeState(w io.Writer, st State) error {
	var o snapshotObject
	o.set(attrVersion, SchemaVersion)
	o.merge(st)
	b, err := o.bytes()
	if err != nil {
		return fmt.Errorf("cannot encode snapshot: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// DecodeState reads a snapshot. version is used when the payload does not
// carry its own schemaVersion.
func DecodeState(r io.Reader, version int) (State, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber() // keep money digits intact through the round trip
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return State{}, fmt.Errorf("not a json object: %w", err)
	}
	if raw == nil {
		return State{}, errors.New("empty snapshot")
	}

	if v, ok := raw[attrVersion].(json.Number); ok {
		n, err := v.Int64()
		if err != nil {
			return State{}, fmt.Errorf("invalid %s %q: %w", attrVersion, v, err)
		}
		version = int(n)
	}
	if version < 1 || version > SchemaVersion {
		return State{}, fmt.Errorf("unsupported snapshot version %d", version)
	}
	for v := version; v < SchemaVersion; v++ {
		migrations[v-1](raw)
	}
	repairRates(raw)
	delete(raw, attrVersion)

	b, err := json.Marshal(raw)
	if err != nil {
		return State{}, err
	}
	st := NewState()
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("invalid snapshot: %w", err)
	}
	if !st.Language.Valid() {
		st.Language = Russian
	}
	if !st.Theme.Valid() {
		st.Theme = Dark
	}
	for _, b := range Brands {
		if st.CustomModels[b] == nil {
			st.CustomModels[b] = []string{}
		}
	}
	checkReferences(st)
	return st, nil
}

// migrations[i] upgrades a raw snapshot from version i+1 to i+2.
//
// Each step only fills in what the newer version introduced, so applying a
// step to an already upgraded snapshot is harmless.
var migrations = []func(map[string]any){
	// v2: user preferences
	func(raw map[string]any) {
		setDefault(raw, "language", string(Russian))
		setDefault(raw, "theme", string(Dark))
	},
	// v3: collections are always present
	func(raw map[string]any) {
		setDefault(raw, "devices", []any{})
		setDefault(raw, "sales", []any{})
	},
	// v4: cash balance
	func(raw map[string]any) {
		setDefault(raw, "cashBalance", json.Number("0"))
	},
	// v5: custom models per brand
	func(raw map[string]any) {
		setDefault(raw, "customModels", map[string]any{})
		if models, ok := raw["customModels"].(map[string]any); ok {
			for _, b := range Brands {
				setDefault(models, string(b), []any{})
			}
		}
	},
	// v6: exchange, buy and sell rates
	repairRates,
	// v7: sync settings
	func(raw map[string]any) {
		setDefault(raw, "syncSettings", map[string]any{})
	},
}

// isBlank reports values the original app treated as missing.
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return err != nil || d.IsZero()
	}
	return false
}

func setDefault(raw map[string]any, key string, value any) {
	if isBlank(raw[key]) {
		raw[key] = value
	}
}

// repairRates fills missing rates. A stored exchange rate of 1 is a
// placeholder from an early release and is replaced too.
func repairRates(raw map[string]any) {
	rate := DefaultExchangeRate
	if n, ok := raw["exchangeRate"].(json.Number); ok {
		if d, err := decimal.NewFromString(n.String()); err == nil && !d.IsZero() && !d.Equal(decimal.NewFromInt(1)) {
			rate = R(d)
		}
	}
	raw["exchangeRate"] = json.Number(rate.String())
	setDefault(raw, "buyRate", json.Number(rate.Sub(DefaultSpread).String()))
	setDefault(raw, "sellRate", json.Number(rate.Add(DefaultSpread).String()))
}

// checkReferences logs sales pointing to devices that do not exist.
func checkReferences(st State) {
	for _, s := range st.Sales {
		if s.DeviceID == "" {
			continue
		}
		if _, ok := st.Device(s.DeviceID); !ok {
			log.WithFields(log.Fields{"sale": s.ID, "device": s.DeviceID}).Warn("sale references an unknown device")
		}
	}
}

// Load reads the current snapshot from store, falling back to legacy keys in
// descending version order. Unreadable snapshots are skipped. When nothing
// usable is found, Load returns a fresh State.
func Load(ctx context.Context, store Store) (State, error) {
	for _, key := range append([]string{CurrentKey}, LegacyKeys...) {
		data, err := store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return State{}, fmt.Errorf("cannot read snapshot %q: %w", key, err)
		}
		st, err := DecodeState(bytes.NewReader(data), KeyVersion(key))
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("skipping unreadable snapshot")
			continue
		}
		if key != CurrentKey {
			log.WithField("key", key).Info("recovered data from legacy snapshot")
		}
		return st, nil
	}
	return NewState(), nil
}

// Save writes st under CurrentKey.
func Save(ctx context.Context, store Store, st State) error {
	var buf bytes.Buffer
	if err := EncodeState(&buf, st); err != nil {
		return err
	}
	if err := store.Put(ctx, CurrentKey, buf.Bytes()); err != nil {
		return fmt.Errorf("cannot write snapshot %q: %w", CurrentKey, err)
	}
	return nil
}
