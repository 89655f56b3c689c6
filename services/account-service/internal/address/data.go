package address

type postalRange struct {
	min int
	max int
}

type stateData struct {
	ranges []postalRange
	// cities maps a city to the postal code prefixes issued for it.
	cities map[string][]string
}

var postalData = map[string]stateData{
	"Maharashtra": {
		ranges: []postalRange{{400000, 449999}},
		cities: map[string][]string{
			"Mumbai":     {"400"},
			"Pune":       {"411", "412"},
			"Nagpur":     {"440", "441"},
			"Nashik":     {"422"},
			"Thane":      {"4006", "401"},
			"Aurangabad": {"431"},
		},
	},
	"Delhi": {
		ranges: []postalRange{{110000, 110999}},
		cities: map[string][]string{
			"New Delhi":   {"110"},
			"South Delhi": {"110"},
			"North Delhi": {"110"},
		},
	},
	"Karnataka": {
		ranges: []postalRange{{560000, 599999}},
		cities: map[string][]string{
			"Bengaluru":        {"560", "561", "562"},
			"Mysuru":           {"570", "571"},
			"Hubballi-Dharwad": {"580"},
			"Mangaluru":        {"575"},
		},
	},
	"Tamil Nadu": {
		ranges: []postalRange{{600000, 649999}},
		cities: map[string][]string{
			"Chennai":         {"600"},
			"Coimbatore":      {"641"},
			"Madurai":         {"625"},
			"Tiruchirappalli": {"620"},
			"Salem":           {"636"},
		},
	},
	"Uttar Pradesh": {
		ranges: []postalRange{{201000, 289999}},
		cities: map[string][]string{
			"Lucknow":   {"226"},
			"Kanpur":    {"208"},
			"Ghaziabad": {"201"},
			"Agra":      {"282"},
			"Varanasi":  {"221"},
			"Noida":     {"201"},
			"Prayagraj": {"211"},
		},
	},
	"Gujarat": {
		ranges: []postalRange{{360000, 399999}},
		cities: map[string][]string{
			"Ahmedabad": {"380", "382"},
			"Surat":     {"395", "394"},
			"Vadodara":  {"390", "391"},
			"Rajkot":    {"360"},
		},
	},
	"West Bengal": {
		ranges: []postalRange{{700000, 749999}},
		cities: map[string][]string{
			"Kolkata":  {"700"},
			"Howrah":   {"711"},
			"Siliguri": {"734"},
		},
	},
	"Telangana": {
		ranges: []postalRange{{500000, 509999}},
		cities: map[string][]string{
			"Hyderabad": {"500", "501"},
			"Warangal":  {"506"},
		},
	},
	"Andhra Pradesh": {
		ranges: []postalRange{{510000, 539999}},
		cities: map[string][]string{
			"Visakhapatnam": {"530", "531"},
			"Vijayawada":    {"520", "521"},
			"Guntur":        {"522"},
			"Tirupati":      {"517"},
		},
	},
	"Rajasthan": {
		ranges: []postalRange{{300000, 349999}},
		cities: map[string][]string{
			"Jaipur":  {"302"},
			"Jodhpur": {"342"},
			"Kota":    {"324"},
			"Udaipur": {"313"},
		},
	},
	"Kerala": {
		ranges: []postalRange{{670000, 699999}},
		cities: map[string][]string{
			"Thiruvananthapuram": {"695"},
			"Kochi":              {"682"},
			"Kozhikode":          {"673"},
		},
	},
	"Punjab": {
		ranges: []postalRange{{140000, 160999}},
		cities: map[string][]string{
			"Ludhiana":   {"141"},
			"Amritsar":   {"143"},
			"Chandigarh": {"160"},
			"Jalandhar":  {"144"},
		},
	},
	"Haryana": {
		ranges: []postalRange{{120000, 139999}},
		cities: map[string][]string{
			"Gurugram":  {"122"},
			"Faridabad": {"121"},
			"Panipat":   {"132"},
		},
	},
	"Madhya Pradesh": {
		ranges: []postalRange{{450000, 489999}},
		cities: map[string][]string{
			"Indore":   {"452"},
			"Bhopal":   {"462"},
			"Gwalior":  {"474"},
			"Jabalpur": {"482"},
		},
	},
	"Bihar": {
		ranges: []postalRange{{800000, 859999}},
		cities: map[string][]string{
			"Patna":       {"800", "801"},
			"Gaya":        {"823"},
			"Muzaffarpur": {"842"},
		},
	},
}
