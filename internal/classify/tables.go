package classify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Points are the score contributions of each signal.
type Points struct {
	AgentDomainKeyword   int `yaml:"agent_domain_keyword"`
	AgentLocalKeyword    int `yaml:"agent_local_keyword"`
	BrokerageDomain      int `yaml:"brokerage_domain"`
	CompanyBrokerage     int `yaml:"company_brokerage"`
	VendorDomainKeyword  int `yaml:"vendor_domain_keyword"`
	VendorLocalKeyword   int `yaml:"vendor_local_keyword"`
	VendorCompanyKeyword int `yaml:"vendor_company_keyword"`
}

// Tables is the curated classification data. A Classifier compiles its own
// copy at construction, so a Tables value can be reused or modified freely
// afterwards.
type Tables struct {
	// PersonalDomains are consumer webmail domains. They never count as
	// business evidence.
	PersonalDomains []string `yaml:"personal_domains"`
	// BrokerageDomains are exact-match real-estate brokerage domains.
	BrokerageDomains []string `yaml:"brokerage_domains"`
	// BlockedDomains are system-generated sender domains, matched exactly or
	// as a parent domain.
	BlockedDomains []string `yaml:"blocked_domains"`
	// BlockedPatterns are substrings that mark a domain as system-generated.
	BlockedPatterns []string `yaml:"blocked_patterns"`
	AgentKeywords   []string `yaml:"agent_keywords"`
	VendorKeywords  []string `yaml:"vendor_keywords"`
	// BrokerageNames are franchise names looked for in company text.
	BrokerageNames []string `yaml:"brokerage_names"`
	Points         Points   `yaml:"points"`
}

// DefaultPoints returns the standard signal weights.
func DefaultPoints() Points {
	return Points{
		AgentDomainKeyword:   40,
		AgentLocalKeyword:    30,
		BrokerageDomain:      50,
		CompanyBrokerage:     40,
		VendorDomainKeyword:  40,
		VendorLocalKeyword:   30,
		VendorCompanyKeyword: 40,
	}
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		PersonalDomains: []string{
			"gmail.com", "googlemail.com", "yahoo.com", "ymail.com", "hotmail.com",
			"outlook.com", "live.com", "msn.com", "aol.com", "icloud.com", "me.com",
			"mac.com", "comcast.net", "att.net", "sbcglobal.net", "verizon.net",
			"bellsouth.net", "cox.net", "charter.net", "earthlink.net",
			"protonmail.com", "proton.me", "gmx.com", "mail.com",
		},
		BrokerageDomains: []string{
			"compass.com", "kw.com", "kwrealty.com", "kellerwilliams.com",
			"remax.net", "remax.com", "coldwellbanker.com", "cbrealty.com",
			"cbhomes.com", "century21.com", "c21.com", "bhhs.com", "bhhsnw.com",
			"sothebysrealty.com", "exprealty.com", "exprealty.net", "redfin.com",
			"era.com", "weichert.com", "howardhanna.com", "longandfoster.com",
			"corcoran.com", "elliman.com", "realtyonegroup.com", "bhgre.com",
			"windermere.com", "johnlscott.com", "realogy.com",
		},
		BlockedDomains: []string{
			"reply.craigslist.org", "docusign.net", "docusign.com", "echosign.com",
			"adobesign.com", "hellosign.com", "dotloop.com", "skyslope.com",
			"ziplogix.com", "zipformplus.com", "transactiondesk.com",
			"brokermint.com", "lonewolf.com", "showingtime.com",
			"mail.zillow.com", "convo.zillow.com", "messaging.realtor.com",
		},
		BlockedPatterns: []string{
			"noreply", "no-reply", "donotreply", "relay", "bounce", "mailer",
		},
		AgentKeywords: []string{
			"realty", "realtor", "realestate", "broker", "homes", "properties",
			"remax", "kellerwilliams", "coldwell", "century21", "sothebys",
			"exprealty", "homeseller", "homebuyer",
		},
		VendorKeywords: []string{
			"title", "escrow", "mortgage", "lending", "lender", "loan",
			"inspection", "inspector", "insurance", "appraisal", "settlement",
			"warranty", "staging", "movers", "closing",
		},
		BrokerageNames: []string{
			"keller williams", "re/max", "remax", "coldwell banker", "century 21",
			"compass", "berkshire hathaway", "sotheby's", "sothebys", "exp realty",
			"redfin", "weichert", "howard hanna", "long & foster", "douglas elliman",
			"realty one group", "better homes and gardens", "era real estate",
			"windermere", "john l. scott",
		},
		Points: DefaultPoints(),
	}
}

// LoadTables reads classification tables from a YAML file. Lists absent
// from the file, and zero point values, take the built-in defaults.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, eris.Wrapf(err, "classify: read tables %s", path)
	}

	var wrapper struct {
		Classify Tables `yaml:"classify"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Tables{}, eris.Wrap(err, "classify: parse tables")
	}
	return wrapper.Classify.withDefaults(), nil
}

func (t Tables) withDefaults() Tables {
	def := DefaultTables()
	fill := func(dst *[]string, src []string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&t.PersonalDomains, def.PersonalDomains)
	fill(&t.BrokerageDomains, def.BrokerageDomains)
	fill(&t.BlockedDomains, def.BlockedDomains)
	fill(&t.BlockedPatterns, def.BlockedPatterns)
	fill(&t.AgentKeywords, def.AgentKeywords)
	fill(&t.VendorKeywords, def.VendorKeywords)
	fill(&t.BrokerageNames, def.BrokerageNames)

	pts := &t.Points
	fillInt := func(dst *int, src int) {
		if *dst == 0 {
			*dst = src
		}
	}
	fillInt(&pts.AgentDomainKeyword, def.Points.AgentDomainKeyword)
	fillInt(&pts.AgentLocalKeyword, def.Points.AgentLocalKeyword)
	fillInt(&pts.BrokerageDomain, def.Points.BrokerageDomain)
	fillInt(&pts.CompanyBrokerage, def.Points.CompanyBrokerage)
	fillInt(&pts.VendorDomainKeyword, def.Points.VendorDomainKeyword)
	fillInt(&pts.VendorLocalKeyword, def.Points.VendorLocalKeyword)
	fillInt(&pts.VendorCompanyKeyword, def.Points.VendorCompanyKeyword)
	return t
}
