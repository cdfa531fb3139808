package dataset

// isoCodes maps dataset country names to ISO 3166-1 alpha-2 codes. It covers
// both the common names and the naming-convention variants different source
// datasets use, so the country loader never has to guess.
var isoCodes = map[string]string{
	"Afghanistan":         "AF",
	"Albania":             "AL",
	"Algeria":             "DZ",
	"Angola":              "AO",
	"Argentina":           "AR",
	"Armenia":             "AM",
	"Australia":           "AU",
	"Austria":             "AT",
	"Azerbaijan":          "AZ",
	"Bangladesh":          "BD",
	"Belarus":             "BY",
	"Belgium":             "BE",
	"Benin":               "BJ",
	"Bhutan":              "BT",
	"Bolivia":             "BO",
	"Bosnia and Herzegovina": "BA",
	"Botswana":            "BW",
	"Brazil":              "BR",
	"Bulgaria":            "BG",
	"Burkina Faso":        "BF",
	"Burundi":             "BI",
	"Cambodia":            "KH",
	"Cameroon":            "CM",
	"Canada":              "CA",
	"Chad":                "TD",
	"Chile":               "CL",
	"China":               "CN",
	"Colombia":            "CO",
	"Costa Rica":          "CR",
	"Croatia":             "HR",
	"Cuba":                "CU",
	"Cyprus":              "CY",
	"Denmark":             "DK",
	"Dominican Republic":  "DO",
	"Ecuador":             "EC",
	"El Salvador":         "SV",
	"Eritrea":             "ER",
	"Estonia":             "EE",
	"Ethiopia":            "ET",
	"Fiji":                "FJ",
	"Finland":             "FI",
	"France":              "FR",
	"Gabon":               "GA",
	"Georgia":             "GE",
	"Germany":             "DE",
	"Ghana":               "GH",
	"Greece":              "GR",
	"Guatemala":           "GT",
	"Guinea":              "GN",
	"Haiti":               "HT",
	"Honduras":            "HN",
	"Hungary":             "HU",
	"Iceland":             "IS",
	"India":               "IN",
	"Indonesia":           "ID",
	"Iraq":                "IQ",
	"Ireland":             "IE",
	"Israel":              "IL",
	"Italy":               "IT",
	"Jamaica":             "JM",
	"Japan":               "JP",
	"Jordan":              "JO",
	"Kazakhstan":          "KZ",
	"Kenya":               "KE",
	"Kuwait":              "KW",
	"Latvia":              "LV",
	"Lebanon":             "LB",
	"Liberia":             "LR",
	"Libya":               "LY",
	"Lithuania":           "LT",
	"Luxembourg":          "LU",
	"Madagascar":          "MG",
	"Malawi":              "MW",
	"Malaysia":            "MY",
	"Mali":                "ML",
	"Malta":               "MT",
	"Mauritania":          "MR",
	"Mauritius":           "MU",
	"Mexico":              "MX",
	"Mongolia":            "MN",
	"Montenegro":          "ME",
	"Morocco":             "MA",
	"Mozambique":          "MZ",
	"Namibia":             "NA",
	"Nepal":               "NP",
	"Netherlands":         "NL",
	"New Zealand":         "NZ",
	"Nicaragua":           "NI",
	"Niger":               "NE",
	"Nigeria":             "NG",
	"North Macedonia":     "MK",
	"Norway":              "NO",
	"Oman":                "OM",
	"Pakistan":            "PK",
	"Panama":              "PA",
	"Papua New Guinea":    "PG",
	"Paraguay":            "PY",
	"Peru":                "PE",
	"Philippines":         "PH",
	"Poland":              "PL",
	"Portugal":            "PT",
	"Qatar":               "QA",
	"Romania":             "RO",
	"Rwanda":              "RW",
	"Saudi Arabia":        "SA",
	"Senegal":             "SN",
	"Serbia":              "RS",
	"Sierra Leone":        "SL",
	"Singapore":           "SG",
	"Slovenia":            "SI",
	"Somalia":             "SO",
	"South Africa":        "ZA",
	"Spain":               "ES",
	"Sri Lanka":           "LK",
	"Sudan":               "SD",
	"Sweden":              "SE",
	"Switzerland":         "CH",
	"Thailand":            "TH",
	"Togo":                "TG",
	"Tunisia":             "TN",
	"Turkey":              "TR",
	"Turkmenistan":        "TM",
	"Uganda":              "UG",
	"Ukraine":             "UA",
	"United Arab Emirates": "AE",
	"Uruguay":             "UY",
	"Uzbekistan":          "UZ",
	"Zambia":              "ZM",
	"Zimbabwe":            "ZW",

	// Naming variations
	"UK":                  "GB",
	"United Kingdom":      "GB",
	"United States":       "US",
	"USA":                 "US",
	"Russia":              "RU",
	"South Korea":         "KR",
	"North Korea":         "KP",
	"Korea, Rep.":         "KR",
	"Korea, Dem. Rep.":    "KP",
	"Vietnam":             "VN",
	"Laos":                "LA",
	"Lao":                 "LA",
	"Iran":                "IR",
	"Syria":               "SY",
	"Venezuela":           "VE",
	"Tanzania":            "TZ",
	"Czech Republic":      "CZ",
	"Czechia":             "CZ",
	"Moldova":             "MD",
	"Kosovo":              "XK",
	"Taiwan":              "TW",
	"Macau":               "MO",
	"Hong Kong":           "HK",
	"Palestine":           "PS",
	"Ivory Coast":         "CI",
	"Cote d'Ivoire":       "CI",
	"Democratic Republic of the Congo": "CD",
	"Congo, Dem. Rep.":    "CD",
	"Republic of the Congo": "CG",
	"Congo, Rep.":         "CG",
	"Brunei":              "BN",
	"East Timor":          "TL",
	"Timor-Leste":         "TL",
	"Cape Verde":          "CV",
	"Cabo Verde":          "CV",
	"Micronesia":          "FM",
	"Micronesia, Fed. Sts.": "FM",
	"Saint Kitts and Nevis": "KN",
	"St. Kitts and Nevis": "KN",
	"Saint Lucia":         "LC",
	"St. Lucia":           "LC",
	"Saint Vincent and the Grenadines": "VC",
	"St. Vincent and the Grenadines":   "VC",
	"Sao Tome and Principe": "ST",
	"eSwatini":            "SZ",
	"Swaziland":           "SZ",
	"Burma":               "MM",
	"Myanmar":             "MM",
	"South Sudan":         "SS",
	"Egypt":               "EG",
	"Egypt, Arab Rep.":    "EG",
	"Yemen":               "YE",
	"Yemen, Rep.":         "YE",
	"Gambia":              "GM",
	"Gambia, The":         "GM",
	"Bahamas":             "BS",
	"Bahamas, The":        "BS",
	"Kyrgyzstan":          "KG",
	"Kyrgyz Republic":     "KG",
	"Slovakia":            "SK",
	"Slovak Republic":     "SK",
}

// skipEntries lists dataset keys that are not countries (continents,
// aggregates, territories that would collide with a real country's code).
var skipEntries = map[string]struct{}{
	"World":         {},
	"Africa":        {},
	"Asia":          {},
	"Europe":        {},
	"North America": {},
	"South America": {},
	"Oceania":       {},
	"Channel Islands": {},
	"Clipperton":      {},
	"French Southern and Antarctic Lands": {},
	"St. Martin (French part)":            {},
}

// ISOCode resolves a dataset country name to its ISO2 code. Returns false
// for unknown names.
func ISOCode(name string) (string, bool) {
	code, ok := isoCodes[name]
	return code, ok
}

// SkipEntry reports whether a dataset key should be ignored when loading
// countries.
func SkipEntry(name string) bool {
	_, ok := skipEntries[name]
	return ok
}
