package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConfigType string

const (
	ConfigTypeString  ConfigType = "string"
	ConfigTypeNumber  ConfigType = "number"
	ConfigTypeBoolean ConfigType = "boolean"
	ConfigTypeObject  ConfigType = "object"
	ConfigTypeArray   ConfigType = "array"
)

func (t ConfigType) Valid() bool {
	switch t {
	case ConfigTypeString, ConfigTypeNumber, ConfigTypeBoolean, ConfigTypeObject, ConfigTypeArray:
		return true
	}
	return false
}

type ConfigCategory string

const (
	ConfigCategoryGeneral      ConfigCategory = "general"
	ConfigCategorySecurity     ConfigCategory = "security"
	ConfigCategoryNotification ConfigCategory = "notification"
	ConfigCategoryPayment      ConfigCategory = "payment"
	ConfigCategoryFeature      ConfigCategory = "feature"
)

func (c ConfigCategory) Valid() bool {
	switch c {
	case ConfigCategoryGeneral, ConfigCategorySecurity, ConfigCategoryNotification,
		ConfigCategoryPayment, ConfigCategoryFeature:
		return true
	}
	return false
}

// ConfigValue is a setting payload tagged with its declared type.
// The zero value is an empty string value.
type ConfigValue struct {
	kind ConfigType
	str  string
	num  float64
	flag bool
	obj  map[string]any
	arr  []any
}

func StringValue(s string) ConfigValue  { return ConfigValue{kind: ConfigTypeString, str: s} }
func NumberValue(n float64) ConfigValue { return ConfigValue{kind: ConfigTypeNumber, num: n} }
func BoolValue(b bool) ConfigValue      { return ConfigValue{kind: ConfigTypeBoolean, flag: b} }

func ObjectValue(m map[string]any) ConfigValue {
	if m == nil {
		m = map[string]any{}
	}
	return ConfigValue{kind: ConfigTypeObject, obj: m}
}

func ArrayValue(a []any) ConfigValue {
	if a == nil {
		a = []any{}
	}
	return ConfigValue{kind: ConfigTypeArray, arr: a}
}

func (v ConfigValue) Type() ConfigType {
	if v.kind == "" {
		return ConfigTypeString
	}
	return v.kind
}

func (v ConfigValue) AsString() (string, bool)  { return v.str, v.Type() == ConfigTypeString }
func (v ConfigValue) AsNumber() (float64, bool) { return v.num, v.kind == ConfigTypeNumber }
func (v ConfigValue) AsBool() (bool, bool)      { return v.flag, v.kind == ConfigTypeBoolean }
func (v ConfigValue) AsObject() (map[string]any, bool) {
	return v.obj, v.kind == ConfigTypeObject
}
func (v ConfigValue) AsArray() ([]any, bool) { return v.arr, v.kind == ConfigTypeArray }

// Raw returns the untagged payload for encoding.
func (v ConfigValue) Raw() any {
	switch v.Type() {
	case ConfigTypeNumber:
		return v.num
	case ConfigTypeBoolean:
		return v.flag
	case ConfigTypeObject:
		return v.obj
	case ConfigTypeArray:
		return v.arr
	default:
		return v.str
	}
}

func (v ConfigValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// ConfigValueFrom tags an already decoded payload with t, failing when the payload shape
// does not match. Integer payloads are accepted for numbers.
func ConfigValueFrom(t ConfigType, raw any) (ConfigValue, error) {
	switch t {
	case ConfigTypeString:
		if s, ok := raw.(string); ok {
			return StringValue(s), nil
		}
	case ConfigTypeNumber:
		switch n := raw.(type) {
		case float64:
			return NumberValue(n), nil
		case float32:
			return NumberValue(float64(n)), nil
		case int:
			return NumberValue(float64(n)), nil
		case int32:
			return NumberValue(float64(n)), nil
		case int64:
			return NumberValue(float64(n)), nil
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return ConfigValue{}, fmt.Errorf("value is not a number: %w", err)
			}
			return NumberValue(f), nil
		}
	case ConfigTypeBoolean:
		if b, ok := raw.(bool); ok {
			return BoolValue(b), nil
		}
	case ConfigTypeObject:
		if m, ok := raw.(map[string]any); ok {
			return ObjectValue(m), nil
		}
	case ConfigTypeArray:
		if a, ok := raw.([]any); ok {
			return ArrayValue(a), nil
		}
	default:
		return ConfigValue{}, fmt.Errorf("unknown config type %q", t)
	}
	return ConfigValue{}, fmt.Errorf("value does not match type %q", t)
}

// ParseConfigValue decodes a JSON payload declared as type t.
func ParseConfigValue(t ConfigType, data json.RawMessage) (ConfigValue, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ConfigValue{}, fmt.Errorf("value is required")
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ConfigValue{}, fmt.Errorf("decoding value: %w", err)
	}
	return ConfigValueFrom(t, raw)
}

type SystemConfig struct {
	ID          primitive.ObjectID `json:"id"`
	Key         string             `json:"key"`
	Value       ConfigValue        `json:"value"`
	Type        ConfigType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Category    ConfigCategory     `json:"category"`
	IsPublic    bool               `json:"isPublic"`
	UpdatedBy   primitive.ObjectID `json:"updatedBy"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// UnmarshalJSON decodes value according to the sibling type field.
func (c *SystemConfig) UnmarshalJSON(data []byte) error {
	type alias SystemConfig
	aux := struct {
		*alias
		Value json.RawMessage `json:"value"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := ParseConfigValue(c.Type, aux.Value)
	if err != nil {
		return fmt.Errorf("config %q: %w", c.Key, err)
	}
	c.Value = v
	return nil
}

// ConfigDraft is an admin write of one key.
type ConfigDraft struct {
	Key         string          `json:"key" validate:"required,configkey"`
	Type        ConfigType      `json:"type" validate:"required,oneof=string number boolean object array"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description" validate:"max=500"`
	Category    ConfigCategory  `json:"category" validate:"required,oneof=general security notification payment feature"`
	IsPublic    bool            `json:"isPublic"`
}
