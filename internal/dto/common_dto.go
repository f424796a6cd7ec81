package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Field 部分更新字段，区分"未提供"和"显式null"
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON 实现json.Unmarshaler，null 也会调用到这里
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

// Some 构造已赋值字段，主要给测试和内部调用使用
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null 构造显式null字段
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// 可接受的时间格式，依次尝试
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp ISO-8601 时间，无时区时按UTC处理
type Timestamp struct {
	time.Time
}

// ParseTimestamp 解析ISO-8601时间
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected ISO-8601", s)
}

// UnmarshalJSON 实现json.Unmarshaler，空字符串解析为零值
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON 实现json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}
