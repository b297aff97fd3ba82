package kafka

import (
	"fmt"
	"strconv"
)

// Canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据，只包含被修改的列
	Old []map[string]interface{} `json:"old"`

	SqlType   map[string]int    `json:"sqlType"`
	MysqlType map[string]string `json:"mysqlType"`
}

// Column 收集 Data 中某一列的所有值，Canal 的列值统一为字符串
func (m *CanalMessage) Column(name string) []uint64 {
	ids := make([]uint64, 0, len(m.Data))
	for _, row := range m.Data {
		if id := StrToUint64(row[name]); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func StrToUint64(v interface{}) uint64 {
	switch val := v.(type) {
	case nil:
		return 0
	case string:
		id, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return 0
		}
		return id
	case float64:
		return uint64(val)
	default:
		id, err := strconv.ParseUint(fmt.Sprint(val), 10, 64)
		if err != nil {
			return 0
		}
		return id
	}
}
