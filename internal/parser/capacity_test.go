package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCapacities(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		total   *int
		fridge  *int
		freezer *int
	}{
		{
			name:    "Typical spec text",
			text:    "양문형 / 총용량: 870L/냉장: 503L/냉동: 367L/ 에너지효율: 1등급",
			total:   intPtr(870),
			fridge:  intPtr(503),
			freezer: intPtr(367),
		},
		{
			name:    "Labels in a different order",
			text:    "냉동: 367L/총용량: 870L/냉장: 503L",
			total:   intPtr(870),
			fridge:  intPtr(503),
			freezer: intPtr(367),
		},
		{
			name:    "Thousands separators are stripped",
			text:    "총용량: 1,234L/냉장: 1,000L/냉동: 234L",
			total:   intPtr(1234),
			fridge:  intPtr(1000),
			freezer: intPtr(234),
		},
		{
			name:    "Colon and spaces are optional",
			text:    "총용량870 L 냉장 : 503L 냉동:367  L",
			total:   intPtr(870),
			fridge:  intPtr(503),
			freezer: intPtr(367),
		},
		{
			name:   "Missing freezer stays absent",
			text:   "총용량: 870L/냉장: 503L/",
			total:  intPtr(870),
			fridge: intPtr(503),
		},
		{
			name:    "Missing total stays absent",
			text:    "냉장: 503L/냉동: 367L/",
			fridge:  intPtr(503),
			freezer: intPtr(367),
		},
		{
			name:    "First occurrence wins",
			text:    "총용량: 500L/냉장: 300L/냉동: 200L/총용량: 999L",
			total:   intPtr(500),
			fridge:  intPtr(300),
			freezer: intPtr(200),
		},
		{
			name:   "Label without liters is absent",
			text:   "총용량: 870kg/냉장: 503L/냉동: 367",
			fridge: intPtr(503),
		},
		{
			name:   "Separator only is absent",
			text:   "총용량: ,L/냉장: 503L",
			fridge: intPtr(503),
		},
		{
			name:    "Zero is a value",
			text:    "총용량: 0L/냉장: 0L/냉동: 0L",
			total:   intPtr(0),
			fridge:  intPtr(0),
			freezer: intPtr(0),
		},
		{
			name:    "Non-breaking spaces around values",
			text:    "총용량:\u00a0870L/냉장:\u00a0503\u00a0L/냉동\u00a0:\u00a0367L/",
			total:   intPtr(870),
			fridge:  intPtr(503),
			freezer: intPtr(367),
		},
		{
			name:    "Ideographic space and full-width digits",
			text:    "총용량:\u3000８７０L/냉장: ５０３L/냉동: 3６7L",
			total:   intPtr(870),
			fridge:  intPtr(503),
			freezer: intPtr(367),
		},
		{
			name: "No labels",
			text: "1도어 / 소형 / 에너지효율: 2등급",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := ExtractCapacities(tt.text)
			assert.Equal(t, tt.total, caps.Total, "total")
			assert.Equal(t, tt.fridge, caps.Fridge, "fridge")
			assert.Equal(t, tt.freezer, caps.Freezer, "freezer")
		})
	}
}

func TestExtractCapacitiesOverflowIsAbsent(t *testing.T) {
	caps := ExtractCapacities("총용량: 99999999999999999999999L/냉장: 5L/냉동: 3L")
	assert.Nil(t, caps.Total)
	assert.False(t, caps.Complete())
}

func TestAsciiDigits(t *testing.T) {
	assert.Equal(t, "1234", asciiDigits("１２３４"))
	assert.Equal(t, "0987", asciiDigits("٠٩٨٧"))
	assert.Equal(t, "42", asciiDigits("42"))
}

func intPtr(v int) *int { return &v }
