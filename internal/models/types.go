package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap 自定义JSON类型，以文本存储任意键值
type JSONMap map[string]interface{}

// Scan 实现sql.Scanner接口
func (j *JSONMap) Scan(value interface{}) error {
	*j = make(JSONMap)
	raw, err := rawJSON(value)
	if err != nil || raw == nil {
		return err
	}
	return json.Unmarshal(raw, j)
}

// Value 实现driver.Valuer接口
func (j JSONMap) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

// JSONList 有序的不透明记录列表（子任务）
type JSONList []map[string]interface{}

// Scan 实现sql.Scanner接口
func (l *JSONList) Scan(value interface{}) error {
	*l = JSONList{}
	raw, err := rawJSON(value)
	if err != nil || raw == nil {
		return err
	}
	return json.Unmarshal(raw, l)
}

// Value 实现driver.Valuer接口
func (l JSONList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// StringSet 去重且保持顺序的字符串集合（标签）
type StringSet []string

// NewStringSet 去掉空串和重复项
func NewStringSet(values []string) StringSet {
	seen := make(map[string]struct{}, len(values))
	out := make(StringSet, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Equal 按集合语义比较
func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	set := make(map[string]struct{}, len(s))
	for _, v := range s {
		set[v] = struct{}{}
	}
	for _, v := range other {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// Scan 实现sql.Scanner接口
func (s *StringSet) Scan(value interface{}) error {
	*s = StringSet{}
	raw, err := rawJSON(value)
	if err != nil || raw == nil {
		return err
	}
	return json.Unmarshal(raw, s)
}

// Value 实现driver.Valuer接口
func (s StringSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func rawJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}
