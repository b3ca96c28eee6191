package types

// Risk is one entry of the gateway's risk catalogue.
type Risk struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// SafeCode is emitted by the classifier for content that carries no risk.
const SafeCode = "sec"

// Risks lists every category the gateway can block, in catalogue order.
var Risks = []Risk{
	{"pc", "Pornographic Contraband"},
	{"dc", "Drug Crimes"},
	{"dw", "Dangerous Weapons"},
	{"pi", "Property Infringement"},
	{"ec", "Economic Crimes"},
	{"ac", "Abusive Curses"},
	{"def", "Defamation"},
	{"ti", "Threats and Intimidation"},
	{"cy", "Cyberbullying"},
	{"ph", "Physical Health"},
	{"mh", "Mental Health"},
	{"se", "Social Ethics"},
	{"sci", "Science Ethics"},
	{"pp", "Personal Privacy"},
	{"cs", "Commercial Secret"},
	{"acc", "Access Control"},
	{"mc", "Malicious Code"},
	{"ha", "Hacker Attack"},
	{"ps", "Physical Security"},
	{"ter", "Violent Terrorist Activities"},
	{"sd", "Social Disruption"},
	{"ext", "Extremist Ideological Trends"},
	{"fin", "Finance"},
	{"med", "Medicine"},
	{"law", "Law"},
	{"cm", "Corruption of Minors"},
	{"ma", "Minor Abuse and Exploitation"},
	{"md", "Minor Delinquency"},
}

var riskNames = func() map[string]string {
	m := make(map[string]string, len(Risks)+1)
	for _, r := range Risks {
		m[r.Code] = r.Name
	}
	m[SafeCode] = "Safe"
	return m
}()

// RiskName returns the display name for code, or code itself when unknown.
func RiskName(code string) string {
	if name, ok := riskNames[code]; ok {
		return name
	}
	return code
}
