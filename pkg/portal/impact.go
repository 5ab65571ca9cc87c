package portal

import "math"

// Resource is one sustainability metric.
type Resource string

const (
	ResourceEnergy Resource = "energy"
	ResourceWater  Resource = "water"
	ResourceWaste  Resource = "waste"
)

// Equivalent pairs a saving with a relatable comparison.
type Equivalent struct {
	Value      float64 `json:"value"`
	Equivalent string  `json:"equivalent"`
}

// ImpactMetric is a saving measured against the top percentile.
type ImpactMetric struct {
	Resource    Resource     `json:"resource"`
	Label       string       `json:"label"`
	Unit        string       `json:"unit"`
	Saved       float64      `json:"saved"`
	Average     float64      `json:"average"`
	Top         float64      `json:"topPercentile"`
	Equivalents []Equivalent `json:"equivalents"`
}

// Percent is Saved relative to the top percentile, capped at 100.
func (m ImpactMetric) Percent() float64 {
	if m.Top <= 0 {
		return 0
	}
	return math.Min(100, m.Saved/m.Top*100)
}

// AboveAverage reports whether the saving beats the average user.
func (m ImpactMetric) AboveAverage() bool {
	return m.Saved > m.Average
}

// Impact is the sustainability report content.
type Impact struct {
	Metrics      []ImpactMetric `json:"metrics"`
	CarbonOffset float64        `json:"carbonOffsetKg"`
	Trend        Trend          `json:"trend"`
}

// ImpactData returns the sustainability report content.
func ImpactData() Impact {
	return Impact{
		Metrics: []ImpactMetric{
			{
				Resource: ResourceEnergy, Label: "Energy Saved", Unit: "kWh",
				Saved: 1245, Average: 850, Top: 1500,
				Equivalents: []Equivalent{
					{Value: 1245, Equivalent: "Charging 100,000 smartphones"},
					{Value: 1245, Equivalent: "12 refrigerators running for a year"},
				},
			},
			{
				Resource: ResourceWater, Label: "Water Saved", Unit: "L",
				Saved: 8560, Average: 6000, Top: 10000,
				Equivalents: []Equivalent{
					{Value: 8560, Equivalent: "340 showers"},
					{Value: 8560, Equivalent: "2.5 Olympic swimming pools"},
				},
			},
			{
				Resource: ResourceWaste, Label: "Waste Reduced", Unit: "kg",
				Saved: 320, Average: 250, Top: 500,
				Equivalents: []Equivalent{
					{Value: 320, Equivalent: "1,600 water bottles"},
					{Value: 320, Equivalent: "Weight of an adult panda"},
				},
			},
		},
		CarbonOffset: 450,
		Trend: Trend{
			Labels: append([]string(nil), months...),
			Series: []Series{
				{Label: "Energy", Data: []int{80, 95, 110, 105, 130, 145}},
				{Label: "Water", Data: []int{600, 650, 700, 720, 800, 850}},
				{Label: "Waste", Data: []int{20, 25, 30, 35, 40, 45}},
			},
		},
	}
}
