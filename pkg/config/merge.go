package config

import (
	"fmt"
	"reflect"
)

// MergeConfig 把 override 中显式设置的字段覆盖到 defaults 上并返回 defaults
//
// 判断字段是否显式设置：
//   - bool 总是覆盖，传入的 false 会关闭默认开启的选项
//   - 非 nil 指针总是覆盖，即使指向零值；指向结构体时逐字段合并
//   - 其余标量非零才覆盖
//   - 非空切片整体替换，map 按 key 合并
//
// 任一参数为 nil 时直接返回另一个，两者都为 nil 返回错误。
func MergeConfig[T any](defaults, override *T) (*T, error) {
	switch {
	case defaults == nil && override == nil:
		return nil, fmt.Errorf("merge config: both defaults and override are nil")
	case defaults == nil:
		return override, nil
	case override == nil:
		return defaults, nil
	}

	dst := reflect.ValueOf(defaults).Elem()
	src := reflect.ValueOf(override).Elem()
	if err := mergeInto(dst, src, dst.Type().Name()); err != nil {
		return nil, err
	}
	return defaults, nil
}

// mergeInto 按字段类型决定 src 是否覆盖 dst，path 仅用于错误信息
func mergeInto(dst, src reflect.Value, path string) error {
	if dst.Type() != src.Type() {
		return fmt.Errorf("merge config: %s: type mismatch %s != %s", path, dst.Type(), src.Type())
	}

	switch src.Kind() {
	case reflect.Struct:
		t := src.Type()
		if !hasExportedField(t) {
			if !src.IsZero() {
				dst.Set(src)
			}
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if err := mergeInto(dst.Field(i), src.Field(i), path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil

	case reflect.Bool:
		dst.SetBool(src.Bool())
		return nil

	case reflect.Ptr:
		if src.IsNil() {
			return nil
		}
		if src.Elem().Kind() != reflect.Struct || dst.IsNil() {
			dst.Set(reflect.New(src.Type().Elem()))
			dst.Elem().Set(src.Elem())
			return nil
		}
		return mergeInto(dst.Elem(), src.Elem(), path)

	case reflect.Map:
		if src.Len() == 0 {
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(src.Type(), src.Len()))
		}
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
		return nil

	case reflect.Slice:
		if src.Len() > 0 {
			dst.Set(src)
		}
		return nil

	default:
		if !src.IsZero() {
			dst.Set(src)
		}
		return nil
	}
}

// hasExportedField 没有导出字段的结构体（如 time.Time）按整体值处理
func hasExportedField(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}
