// Package geo correlates shortage reports onto the fixed registry of the 27
// Egyptian governorates and classifies per-governorate severity.
package geo

// Region is one governorate with the map coordinates of its capital. The
// registry is immutable for the process lifetime.
type Region struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Governorates is the complete registry. Shortage reports reference entries
// by exact, case-sensitive name equality.
var Governorates = []Region{
	{Name: "القاهرة", Lat: 30.0444, Lng: 31.2357},
	{Name: "الجيزة", Lat: 30.0131, Lng: 31.2089},
	{Name: "الإسكندرية", Lat: 31.2001, Lng: 29.9187},
	{Name: "الدقهلية", Lat: 31.0409, Lng: 31.3785},
	{Name: "البحر الأحمر", Lat: 27.2579, Lng: 33.8116},
	{Name: "البحيرة", Lat: 31.0341, Lng: 30.4682},
	{Name: "الفيوم", Lat: 29.3084, Lng: 30.8428},
	{Name: "الغربية", Lat: 30.7865, Lng: 31.0004},
	{Name: "الإسماعيلية", Lat: 30.5965, Lng: 32.2715},
	{Name: "المنوفية", Lat: 30.5972, Lng: 30.9876},
	{Name: "المنيا", Lat: 28.1099, Lng: 30.7503},
	{Name: "القليوبية", Lat: 30.1286, Lng: 31.2422},
	{Name: "الوادي الجديد", Lat: 25.4519, Lng: 30.5467},
	{Name: "السويس", Lat: 29.9668, Lng: 32.5498},
	{Name: "أسوان", Lat: 24.0889, Lng: 32.8998},
	{Name: "أسيوط", Lat: 27.1809, Lng: 31.1837},
	{Name: "بني سويف", Lat: 29.0661, Lng: 31.0994},
	{Name: "بورسعيد", Lat: 31.2653, Lng: 32.3019},
	{Name: "دمياط", Lat: 31.4165, Lng: 31.8133},
	{Name: "الشرقية", Lat: 30.5877, Lng: 31.5020},
	{Name: "جنوب سيناء", Lat: 28.2417, Lng: 33.6229},
	{Name: "كفر الشيخ", Lat: 31.1107, Lng: 30.9388},
	{Name: "مطروح", Lat: 31.3543, Lng: 27.2373},
	{Name: "الأقصر", Lat: 25.6872, Lng: 32.6396},
	{Name: "قنا", Lat: 26.1551, Lng: 32.7160},
	{Name: "شمال سيناء", Lat: 30.2824, Lng: 33.6176},
	{Name: "سوهاج", Lat: 26.5591, Lng: 31.6957},
}

var registry = func() map[string]Region {
	byName := make(map[string]Region, len(Governorates))
	for _, region := range Governorates {
		byName[region.Name] = region
	}
	return byName
}()

// Valid reports whether name exactly matches a registry entry. Lifecycle
// commands use it to reject unknown governorates at write time.
func Valid(name string) bool {
	_, ok := registry[name]
	return ok
}

// ByName looks up a governorate by exact name.
func ByName(name string) (Region, bool) {
	region, ok := registry[name]
	return region, ok
}
