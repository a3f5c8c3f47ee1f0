package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// migration upgrades a raw document from version from to from+1
type migration struct {
	from  int
	apply func(doc map[string]any) error
}

var migrations = []migration{
	{from: 1, apply: migrateV1ToV2},
	{from: 2, apply: migrateV2ToV3},
}

// MigrateDocument runs every migration step between the document's version and
// target, in order. Steps whose source version is below the document's version
// are skipped, so running it twice is a no-op.
func MigrateDocument(doc map[string]any, target int) error {
	version, err := documentVersion(doc)
	if err != nil {
		return err
	}
	if version < 1 {
		return fmt.Errorf("invalid document version %d", version)
	}

	for _, m := range migrations {
		if m.from < version || m.from >= target {
			continue
		}
		if err := m.apply(doc); err != nil {
			return fmt.Errorf("migration v%d -> v%d: %w", m.from, m.from+1, err)
		}
		version = m.from + 1
		doc["version"] = version
	}

	if version < target {
		return fmt.Errorf("no migration path from v%d to v%d", version, target)
	}
	return nil
}

// migrateV1ToV2 moves order-amount bounds to whole dollars and replaces the
// single full-service rule with a bundle-mode config.
func migrateV1ToV2(doc map[string]any) error {
	rules, _ := doc["orderAmountRules"].([]any)
	for i, raw := range rules {
		rule, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("orderAmountRules[%d] is not an object", i)
		}

		min, _, err := int64Value(rule["minSubtotalCents"])
		if err != nil {
			return fmt.Errorf("orderAmountRules[%d].minSubtotalCents: %w", i, err)
		}
		rule["minSubtotalDollars"] = floorDiv(min, 100)

		max, present, err := int64Value(rule["maxSubtotalCents"])
		if err != nil {
			return fmt.Errorf("orderAmountRules[%d].maxSubtotalCents: %w", i, err)
		}
		if present {
			rule["maxSubtotalDollars"] = floorDiv(max, 100)
		} else {
			rule["maxSubtotalDollars"] = nil
		}

		delete(rule, "minSubtotalCents")
		delete(rule, "maxSubtotalCents")
	}

	if _, ok := doc["fullServiceConfig"]; !ok {
		bundle := map[string]any{"calcType": "flat", "amountCents": nil, "percent": nil, "active": false}
		if legacy, ok := doc["fullServiceRule"].(map[string]any); ok {
			for k, v := range legacy {
				bundle[k] = v
			}
		}
		doc["fullServiceConfig"] = map[string]any{
			"mode":       "bundle",
			"bundle":     bundle,
			"components": map[string]any{},
		}
	}
	delete(doc, "fullServiceRule")

	return nil
}

// migrateV2ToV3 moves order-amount bounds back to cents. A dollar tier
// [a, b] becomes [a*100, b*100+99] so adjacent tiers still abut.
func migrateV2ToV3(doc map[string]any) error {
	rules, _ := doc["orderAmountRules"].([]any)
	for i, raw := range rules {
		rule, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("orderAmountRules[%d] is not an object", i)
		}

		min, _, err := int64Value(rule["minSubtotalDollars"])
		if err != nil {
			return fmt.Errorf("orderAmountRules[%d].minSubtotalDollars: %w", i, err)
		}
		rule["minSubtotalCents"] = min * 100

		max, present, err := int64Value(rule["maxSubtotalDollars"])
		if err != nil {
			return fmt.Errorf("orderAmountRules[%d].maxSubtotalDollars: %w", i, err)
		}
		if present {
			rule["maxSubtotalCents"] = max*100 + 99
		} else {
			rule["maxSubtotalCents"] = nil
		}

		delete(rule, "minSubtotalDollars")
		delete(rule, "maxSubtotalDollars")
	}
	return nil
}

func documentVersion(doc map[string]any) (int, error) {
	version, present, err := int64Value(doc["version"])
	if err != nil {
		return 0, fmt.Errorf("version: %w", err)
	}
	if !present {
		return 0, fmt.Errorf("document has no version")
	}
	return int(version), nil
}

// int64Value reads a JSON number decoded with or without UseNumber.
// present is false for a missing or null value.
func int64Value(v any) (value int64, present bool, err error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false, err
		}
		return int64(math.Floor(f)), true, nil
	case float64:
		return int64(math.Floor(n)), true, nil
	case int:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	case string:
		if n == "" {
			return 0, false, nil
		}
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false, err
		}
		return i, true, nil
	}
	return 0, false, fmt.Errorf("unexpected value %v (%T)", v, v)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
