package registry

import (
	"bytes"
	"encoding/json"
	"math"
)

// record 注册表文档中的单条记录
// 落盘格式: {"ip": "10.0.0.5" | null, "port": 8080}
type record struct {
	IP   *string `json:"ip"`
	Port uint16  `json:"port"`
}

// rawRecord 解码用，端口先按 int64 读取以便做范围检查
type rawRecord struct {
	IP   *string `json:"ip"`
	Port *int64  `json:"port"`
}

// decodeDocument 解析并校验注册表文档
// 兼容旧格式 {"name": 8080}，此时 ip 视为未上报
func decodeDocument(data []byte) (map[string]record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed("decode registry document: %v", err)
	}
	if raw == nil {
		return nil, malformed("registry document must be a JSON object")
	}

	records := make(map[string]record, len(raw))
	for name, msg := range raw {
		if name == "" {
			return nil, malformed("service name must not be empty")
		}

		rec, err := decodeRecord(name, msg)
		if err != nil {
			return nil, err
		}
		records[name] = rec
	}
	return records, nil
}

func decodeRecord(name string, msg json.RawMessage) (record, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 {
		return record{}, malformed("service '%s': empty value", name)
	}

	var port int64
	var ip *string

	if trimmed[0] == '{' {
		var rr rawRecord
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rr); err != nil {
			return record{}, malformed("service '%s': %v", name, err)
		}
		if rr.Port == nil {
			return record{}, malformed("service '%s': port is required", name)
		}
		port = *rr.Port
		ip = rr.IP
	} else {
		// 旧格式：值直接是端口号
		if err := json.Unmarshal(trimmed, &port); err != nil {
			return record{}, malformed("service '%s': port must be an integer: %v", name, err)
		}
	}

	if port < 1 || port > math.MaxUint16 {
		return record{}, malformed("service '%s': port %d out of range 1-65535", name, port)
	}
	return record{IP: ip, Port: uint16(port)}, nil
}

// encodeDocument 序列化注册表文档，key 按字典序输出
func encodeDocument(records map[string]record) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
