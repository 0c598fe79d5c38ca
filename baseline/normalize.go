package baseline

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUnrecognizedPayload is returned when a payload matches none of the
// known feature-data shapes.
var ErrUnrecognizedPayload = errors.New("unrecognized feature payload")

// DecodeFeatures normalizes any supported payload into features, preserving
// payload order.
//
// Accepted shapes:
//   - id-keyed object: {"grid": {"name": ...}, ...}
//   - web-features data.json: {"features": {"grid": {...}}, "groups": ...}
//   - array of records: [{"id": "grid", ...}]
//   - webstatus.dev page: {"data": [{"feature_id": "grid", "baseline": {...}}]}
//
// The envelope shapes are recognized only when no other top-level keys are
// present; anything else is read as id-keyed. data.json entries of kind
// "moved" or "split" are redirects and are skipped.
func DecodeFeatures(data []byte) ([]WebFeature, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnrecognizedPayload)
	}

	root := gjson.ParseBytes(data)

	switch {
	case root.IsArray():
		return decodeRecords(root), nil

	case isEnvelope(root, "data", webStatusKeys) && root.Get("data").IsArray():
		return decodeRecords(root.Get("data")), nil

	case isEnvelope(root, "features", dataJSONKeys) && allObjects(root.Get("features")):
		return decodeKeyed(root.Get("features")), nil

	case root.IsObject():
		return decodeKeyed(root), nil

	default:
		return nil, ErrUnrecognizedPayload
	}
}

// Top-level keys allowed beside the payload key of each envelope shape.
var (
	webStatusKeys = map[string]bool{"metadata": true}
	dataJSONKeys  = map[string]bool{"browsers": true, "groups": true, "snapshots": true}
)

// isEnvelope reports whether root holds key and otherwise only known
// envelope keys. An id-keyed object that merely contains a feature named
// "features" or "data" is not an envelope.
func isEnvelope(root gjson.Result, key string, siblings map[string]bool) bool {
	found, ok := false, true
	root.ForEach(func(k, _ gjson.Result) bool {
		switch {
		case k.String() == key:
			found = true
		case !siblings[k.String()]:
			ok = false
			return false
		}
		return true
	})
	return found && ok
}

// allObjects reports whether obj is an object whose values are all objects,
// as data.json feature entries are.
func allObjects(obj gjson.Result) bool {
	if !obj.IsObject() {
		return false
	}
	ok := true
	obj.ForEach(func(_, v gjson.Result) bool {
		ok = v.IsObject()
		return ok
	})
	return ok
}

func decodeRecords(arr gjson.Result) []WebFeature {
	var out []WebFeature
	arr.ForEach(func(_, rec gjson.Result) bool {
		if f, ok := featureFromRecord("", rec); ok {
			out = append(out, f)
		}
		return true
	})
	return out
}

func decodeKeyed(obj gjson.Result) []WebFeature {
	var out []WebFeature
	obj.ForEach(func(key, rec gjson.Result) bool {
		if !rec.IsObject() {
			return true
		}
		switch rec.Get("kind").String() {
		case "moved", "split":
			return true
		}
		if f, ok := featureFromRecord(key.String(), rec); ok {
			out = append(out, f)
		}
		return true
	})
	return out
}

func featureFromRecord(id string, rec gjson.Result) (WebFeature, bool) {
	if id == "" {
		id = rec.Get("id").String()
	}
	if id == "" {
		id = rec.Get("feature_id").String()
	}
	if id == "" {
		return WebFeature{}, false
	}

	f := WebFeature{
		ID:          id,
		Name:        rec.Get("name").String(),
		Description: rec.Get("description").String(),
		Status:      statusFromRecord(rec),
		Caniuse:     stringList(rec.Get("caniuse")),
		Group:       stringList(rec.Get("group")),
	}
	if f.Name == "" {
		f.Name = id
	}

	spec := rec.Get("spec")
	if spec.IsObject() {
		f.Spec = stringList(spec.Get("links.#.link"))
	} else {
		f.Spec = stringList(spec)
	}

	return f, true
}

func statusFromRecord(rec gjson.Result) *Status {
	if st := rec.Get("status"); st.IsObject() {
		status := &Status{
			Baseline: levelOf(st.Get("baseline")),
			LowDate:  st.Get("baseline_low_date").String(),
			HighDate: st.Get("baseline_high_date").String(),
		}
		if support := st.Get("support"); support.IsObject() {
			status.Support = make(map[string]string)
			support.ForEach(func(browser, version gjson.Result) bool {
				status.Support[browser.String()] = version.String()
				return true
			})
		}
		return status
	}

	// webstatus.dev record
	if bl := rec.Get("baseline"); bl.IsObject() {
		status := &Status{
			Baseline: levelOf(bl.Get("status")),
			LowDate:  bl.Get("low_date").String(),
			HighDate: bl.Get("high_date").String(),
		}
		if impls := rec.Get("browser_implementations"); impls.IsObject() {
			status.Support = make(map[string]string)
			impls.ForEach(func(browser, impl gjson.Result) bool {
				if v := impl.Get("version").String(); v != "" {
					status.Support[browser.String()] = v
				}
				return true
			})
			if len(status.Support) == 0 {
				status.Support = nil
			}
		}
		return status
	}

	return nil
}

func levelOf(v gjson.Result) Level {
	switch v.Type {
	case gjson.False:
		return LevelLimited
	case gjson.String:
		if l, ok := parseLevel(v.String()); ok {
			return l
		}
	}
	return ""
}

// stringList accepts a string or an array of strings.
func stringList(v gjson.Result) []string {
	switch {
	case v.IsArray():
		var out []string
		for _, item := range v.Array() {
			if s := item.String(); s != "" {
				out = append(out, s)
			}
		}
		return out
	case v.Type == gjson.String && v.String() != "":
		return []string{v.String()}
	default:
		return nil
	}
}
