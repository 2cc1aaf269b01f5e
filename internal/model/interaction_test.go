package model

import (
	"bytes"
	"encoding/json"
	"testing"

	"gorm.io/datatypes"
)

func TestProductInteraction_MetadataQuantity(t *testing.T) {
	cases := []struct {
		name     string
		metadata datatypes.JSONMap
		want     int
	}{
		{"无元数据", nil, 1},
		{"无 quantity 键", datatypes.JSONMap{"note": "x"}, 1},
		{"内存写入的 int", datatypes.JSONMap{"quantity": 3}, 3},
		{"内存写入的 float64", datatypes.JSONMap{"quantity": float64(4)}, 4},
		// 数据库读回路径：JSONMap 反序列化数字为 json.Number
		{"读回的 json.Number", datatypes.JSONMap{"quantity": json.Number("5")}, 5},
		{"字符串数字", datatypes.JSONMap{"quantity": "6"}, 6},
		{"不可解析", datatypes.JSONMap{"quantity": "many"}, 1},
	}

	for _, tc := range cases {
		p := &ProductInteraction{Metadata: tc.metadata}
		if got := p.MetadataQuantity(); got != tc.want {
			t.Errorf("%s: 期望数量 %d, 实际 %d", tc.name, tc.want, got)
		}
	}
}

func TestProductInteraction_MetadataQuantityRoundTrip(t *testing.T) {
	// 取回后的 metadata 经过 JSON 反序列化，数量不能退化为 1
	raw, err := json.Marshal(map[string]interface{}{"quantity": 3})
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	var metadata datatypes.JSONMap
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&metadata); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}

	p := &ProductInteraction{Metadata: metadata}
	if got := p.MetadataQuantity(); got != 3 {
		t.Errorf("期望往返后数量 3, 实际 %d", got)
	}
}
