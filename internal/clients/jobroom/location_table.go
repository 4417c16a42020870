package jobroom

import "strconv"

// cityCodes maps common spellings of Swiss municipalities to their BFS
// communal codes. Names shared by several municipalities map to all of them.
var cityCodes = map[string][]string{
	// Zürich
	"zürich":             {"261"},
	"zurich":             {"261"},
	"zuerich":            {"261"},
	"winterthur":         {"230"},
	"uster":              {"198"},
	"dübendorf":          {"191"},
	"duebendorf":         {"191"},
	"dietikon":           {"243"},
	"wetzikon":           {"121"},
	"wädenswil":          {"293"},
	"waedenswil":         {"293"},
	"kloten":             {"62"},
	"bülach":             {"53"},
	"buelach":            {"53"},
	"opfikon":            {"66"},
	"glattbrugg":         {"66"},
	"regensdorf":         {"96"},
	"horgen":             {"295"},
	"thalwil":            {"141"},
	"adliswil":           {"131"},
	"schlieren":          {"247"},
	"wallisellen":        {"69"},
	"illnau-effretikon":  {"296"},
	"effretikon":         {"296"},
	"volketswil":         {"199"},
	"küsnacht":           {"154"},
	"kuesnacht":          {"154"},
	"meilen":             {"156"},
	"zollikon":           {"161"},
	"stäfa":              {"158"},
	"staefa":             {"158"},
	"affoltern am albis": {"2"},

	// Bern
	"bern":                {"351"},
	"berne":               {"351"},
	"köniz":               {"355"},
	"koeniz":              {"355"},
	"thun":                {"942"},
	"biel":                {"371"},
	"bienne":              {"371"},
	"biel/bienne":         {"371"},
	"burgdorf":            {"404"},
	"langenthal":          {"329"},
	"spiez":               {"768"},
	"interlaken":          {"581"},
	"ostermundigen":       {"363"},
	"muri bei bern":       {"356"},
	"bremgarten bei bern": {"353"},

	// Basel
	"basel":      {"2701"},
	"bâle":       {"2701"},
	"basle":      {"2701"},
	"riehen":     {"2703"},
	"allschwil":  {"2762"},
	"liestal":    {"2829"},
	"pratteln":   {"2831"},
	"muttenz":    {"2770"},
	"binningen":  {"2765"},
	"reinach bl": {"2773"},

	// Romandie
	"genève":            {"6621"},
	"geneve":            {"6621"},
	"geneva":            {"6621"},
	"genf":              {"6621"},
	"carouge":           {"6608"},
	"vernier":           {"6643"},
	"lancy":             {"6628"},
	"meyrin":            {"6630"},
	"onex":              {"6631"},
	"thônex":            {"6640"},
	"versoix":           {"6644"},
	"lausanne":          {"5586"},
	"renens":            {"5591"},
	"pully":             {"5590"},
	"prilly":            {"5589"},
	"ecublens":          {"5635"},
	"morges":            {"5642"},
	"nyon":              {"5724"},
	"gland":             {"5721"},
	"vevey":             {"5890"},
	"montreux":          {"5886"},
	"yverdon-les-bains": {"5938"},
	"yverdon":           {"5938"},
	"fribourg":          {"2196"},
	"freiburg":          {"2196"},
	"bulle":             {"2125"},
	"villars-sur-glâne": {"2228"},
	"neuchâtel":         {"6458"},
	"neuchatel":         {"6458"},
	"neuenburg":         {"6458"},
	"la chaux-de-fonds": {"6421"},
	"delémont":          {"6711"},
	"delemont":          {"6711"},
	"sion":              {"6266"},
	"sitten":            {"6266"},
	"martigny":          {"6136"},
	"monthey":           {"6153"},
	"sierre":            {"6248"},
	"brig-glis":         {"6002"},
	"visp":              {"6297"},
	"zermatt":           {"6300"},

	// Central Switzerland
	"luzern":      {"1061"},
	"lucerne":     {"1061"},
	"emmen":       {"1024"},
	"kriens":      {"1059"},
	"horw":        {"1058"},
	"ebikon":      {"1054"},
	"zug":         {"1711"},
	"baar":        {"1701"},
	"cham":        {"1702"},
	"steinhausen": {"1708"},
	"schwyz":      {"1372"},
	"freienbach":  {"1322"},
	"einsiedeln":  {"1301"},
	"altdorf":     {"1206"},
	"sarnen":      {"1407"},
	"stans":       {"1509"},

	// Eastern Switzerland
	"st. gallen":      {"3203"},
	"st.gallen":       {"3203"},
	"st gallen":       {"3203"},
	"sankt gallen":    {"3203"},
	"rapperswil-jona": {"3340"},
	"rapperswil":      {"3340"},
	"wil":             {"3427"},
	"gossau":          {"3443"},
	"rorschach":       {"3215"},
	"uzwil":           {"3408"},
	"buchs":           {"83", "3271", "4003"},
	"buchs zh":        {"83"},
	"buchs sg":        {"3271"},
	"buchs ag":        {"4003"},
	"frauenfeld":      {"4566"},
	"kreuzlingen":     {"4671"},
	"arbon":           {"4401"},
	"amriswil":        {"4461"},
	"schaffhausen":    {"2939"},
	"herisau":         {"3001"},
	"appenzell":       {"3101"},
	"glarus":          {"1630"},
	"chur":            {"3901"},
	"davos":           {"3851"},
	"st. moritz":      {"3787"},

	// Aargau / Solothurn
	"aarau":         {"4001"},
	"baden":         {"4021"},
	"wettingen":     {"4045"},
	"lenzburg":      {"4201"},
	"zofingen":      {"4280"},
	"brugg":         {"4095"},
	"rheinfelden":   {"4258"},
	"bremgarten":    {"4063", "353"},
	"bremgarten ag": {"4063"},
	"olten":         {"2581"},
	"solothurn":     {"2601"},
	"grenchen":      {"2546"},

	// Ticino
	"lugano":     {"5192"},
	"bellinzona": {"5002"},
	"locarno":    {"5113"},
	"mendrisio":  {"5254"},
	"chiasso":    {"5250"},
}

type postalRange struct {
	from, to int
	codes    []string
}

// postalRanges cover the postal codes of the larger cities. Single codes
// are ranges of one.
var postalRanges = []postalRange{
	{8000, 8099, []string{"261"}},
	{8400, 8411, []string{"230"}},
	{3000, 3030, []string{"351"}},
	{4000, 4059, []string{"2701"}},
	{1200, 1209, []string{"6621"}},
	{1000, 1018, []string{"5586"}},
	{6000, 6006, []string{"1061"}},
	{9000, 9016, []string{"3203"}},
	{6900, 6908, []string{"5192"}},
	{2500, 2505, []string{"371"}},
	{3600, 3609, []string{"942"}},
	{8610, 8610, []string{"198"}},
	{8600, 8600, []string{"191"}},
	{8953, 8953, []string{"243"}},
	{6300, 6300, []string{"1711"}},
	{6340, 6340, []string{"1701"}},
	{5000, 5004, []string{"4001"}},
	{5400, 5400, []string{"4021"}},
	{4600, 4600, []string{"2581"}},
	{4500, 4500, []string{"2601"}},
	{8500, 8500, []string{"4566"}},
	{8200, 8200, []string{"2939"}},
	{7000, 7000, []string{"3901"}},
	{1700, 1700, []string{"2196"}},
	{2000, 2000, []string{"6458"}},
	{2300, 2300, []string{"6421"}},
	{1950, 1950, []string{"6266"}},
	{6500, 6500, []string{"5002"}},
	{6600, 6600, []string{"5113"}},
	{1820, 1820, []string{"5886"}},
	{1800, 1800, []string{"5890"}},
	{1260, 1260, []string{"5724"}},
	{1400, 1400, []string{"5938"}},
	{1110, 1110, []string{"5642"}},
	{8302, 8302, []string{"62"}},
	{8180, 8180, []string{"53"}},
}

func postalCodeTable() map[string][]string {
	table := make(map[string][]string)
	for _, r := range postalRanges {
		for code := r.from; code <= r.to; code++ {
			table[strconv.Itoa(code)] = r.codes
		}
	}
	return table
}
