// Package classify assigns a business category to contact records from
// email domain, local-part and company-text evidence, with explicit group
// data taking precedence over inference.
package classify

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/model"
)

// Classification sources.
const (
	SourceGroups  = "groups"
	SourceScore   = "score"
	SourceEnrich  = "enrich"
	SourceDefault = "default"
)

// Default score thresholds.
const (
	DefaultAgentThreshold  = 40
	DefaultVendorThreshold = 40
)

// Result is the outcome of classifying one record.
type Result struct {
	Category    model.Category `json:"category"`
	Score       int            `json:"score"`
	VendorScore int            `json:"vendor_score"`
	Source      string         `json:"source"`
	Signals     []string       `json:"signals,omitempty"`
}

// Classifier scores records against compiled Tables. It is safe for
// concurrent use.
type Classifier struct {
	personal        map[string]bool
	brokerage       map[string]bool
	blocked         []string
	blockedPatterns []string
	agentKeywords   []string
	vendorKeywords  []string
	brokerageNames  []string
	points          Points

	agentThreshold  int
	vendorThreshold int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAgentThreshold sets the minimum score for an Agent classification.
func WithAgentThreshold(n int) Option {
	return func(c *Classifier) { c.agentThreshold = n }
}

// WithVendorThreshold sets the minimum score for a Vendor classification.
func WithVendorThreshold(n int) Option {
	return func(c *Classifier) { c.vendorThreshold = n }
}

// New compiles tables into a Classifier.
func New(tables Tables, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		personal:        toSet(tables.PersonalDomains),
		brokerage:       toSet(tables.BrokerageDomains),
		blocked:         normalizeList(tables.BlockedDomains),
		blockedPatterns: normalizeList(tables.BlockedPatterns),
		agentKeywords:   normalizeList(tables.AgentKeywords),
		vendorKeywords:  normalizeList(tables.VendorKeywords),
		brokerageNames:  normalizeList(tables.BrokerageNames),
		points:          tables.Points,
		agentThreshold:  DefaultAgentThreshold,
		vendorThreshold: DefaultVendorThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.agentThreshold <= 0 || c.vendorThreshold <= 0 {
		return nil, eris.Errorf("classify: thresholds must be positive (agent=%d, vendor=%d)", c.agentThreshold, c.vendorThreshold)
	}
	return c, nil
}

// Emails returns the record's usable addresses: syntactically valid, not
// system-generated, de-duplicated, in alias order.
func (c *Classifier) Emails(rec model.Record) []Email {
	var out []Email
	seen := make(map[string]bool)
	for _, raw := range candidateEmails(rec) {
		e, ok := ParseEmail(raw)
		if !ok {
			zap.L().Debug("classify: skipping malformed email")
			continue
		}
		if c.isBlocked(e.Domain) {
			zap.L().Debug("classify: skipping system domain", zap.String("domain", e.Domain))
			continue
		}
		if seen[e.Address] {
			continue
		}
		seen[e.Address] = true
		out = append(out, e)
	}
	return out
}

// Classify categorizes rec. A recognized group other than Other wins;
// otherwise the agent and vendor scores are compared against their
// thresholds, Agent winning ties. Records with no qualifying evidence are
// Other.
func (c *Classifier) Classify(rec model.Record) Result {
	agent, vendor, signals := c.score(rec)
	res := Result{Score: agent, VendorScore: vendor, Signals: signals}

	if cat, ok := model.ParseGroups(rec.First(model.GroupFields)); ok && cat != model.CategoryOther {
		res.Category = cat
		res.Source = SourceGroups
		return res
	}

	agentOK := agent >= c.agentThreshold
	vendorOK := vendor >= c.vendorThreshold
	switch {
	case agentOK && (!vendorOK || agent >= vendor):
		res.Category = model.CategoryAgent
		res.Source = SourceScore
	case vendorOK:
		res.Category = model.CategoryVendor
		res.Source = SourceScore
	default:
		res.Category = model.CategoryOther
		res.Source = SourceDefault
	}
	return res
}

// Apply writes res.Category into field. A recognized category other than
// Other already on the record is kept, and any other non-empty value is
// kept verbatim unless res found real evidence (a non-default source).
func Apply(rec model.Record, res Result, field string) model.Record {
	cur := rec.Get(field)
	if cat, ok := model.ParseCategory(cur); ok && cat != model.CategoryOther {
		return rec
	}
	if cur != "" && res.Source == SourceDefault {
		return rec
	}
	if rec.Get(field) == string(res.Category) {
		return rec
	}
	return rec.With(field, string(res.Category))
}

func (c *Classifier) score(rec model.Record) (agent, vendor int, signals []string) {
	pts := c.points
	sawPersonal := false

	for _, e := range c.Emails(rec) {
		personal := c.personal[e.Domain]
		if personal {
			sawPersonal = true
		}
		if kw := firstContained(e.Local, c.agentKeywords); kw != "" {
			agent += pts.AgentLocalKeyword
			signals = append(signals, "agent_local:"+kw)
		}
		if kw := firstContained(e.Local, c.vendorKeywords); kw != "" {
			vendor += pts.VendorLocalKeyword
			signals = append(signals, "vendor_local:"+kw)
		}
		if personal {
			continue
		}
		if c.brokerage[e.Domain] {
			agent += pts.BrokerageDomain
			signals = append(signals, "brokerage_domain:"+e.Domain)
		}
		if kw := firstContained(e.Domain, c.agentKeywords); kw != "" {
			agent += pts.AgentDomainKeyword
			signals = append(signals, "agent_domain:"+kw)
		}
		if kw := firstContained(e.Domain, c.vendorKeywords); kw != "" {
			vendor += pts.VendorDomainKeyword
			signals = append(signals, "vendor_domain:"+kw)
		}
	}

	company := strings.ToLower(rec.First(model.CompanyFields))
	if company != "" {
		if name := firstContained(company, c.brokerageNames); name != "" {
			agent += pts.CompanyBrokerage
			if sawPersonal {
				signals = append(signals, "company_brokerage_personal_email:"+name)
			} else {
				signals = append(signals, "company_brokerage:"+name)
			}
		}
		if kw := firstContained(company, c.vendorKeywords); kw != "" {
			vendor += pts.VendorCompanyKeyword
			signals = append(signals, "vendor_company:"+kw)
		}
	}
	return agent, vendor, signals
}

// isBlocked reports whether domain is a listed system domain (or a
// subdomain of one) or contains a blocked pattern.
func (c *Classifier) isBlocked(domain string) bool {
	for _, b := range c.blocked {
		if domain == b || strings.HasSuffix(domain, "."+b) {
			return true
		}
	}
	return firstContained(domain, c.blockedPatterns) != ""
}

func firstContained(s string, needles []string) string {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return n
		}
	}
	return ""
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toSet(in []string) map[string]bool {
	m := make(map[string]bool, len(in))
	for _, s := range normalizeList(in) {
		m[s] = true
	}
	return m
}
