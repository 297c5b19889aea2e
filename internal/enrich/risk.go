// Package enrich computes the request-scoped derived fields of a
// listing: fraud risk, commute and program fit.
package enrich

import (
	"net"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// RiskAssessment is the outcome of the rule-based fraud heuristic.
type RiskAssessment struct {
	Severity domain.RiskSeverity
	Reasons  []string
	Score    int
}

// scamTerms each add a fixed amount to the risk score when found in
// the combined title + company + description text.
var scamTerms = []struct {
	term   string
	points int
	reason string
}{
	{"wire transfer", 30, "Mentions wire transfers"},
	{"western union", 40, "Mentions Western Union payments"},
	{"money transfer", 25, "Mentions money transfers"},
	{"registration fee", 40, "Requires a registration fee"},
	{"training fee", 40, "Requires a training fee"},
	{"upfront payment", 40, "Requires upfront payment"},
	{"processing fee", 35, "Requires a processing fee"},
	{"starter kit", 25, "Requires buying a starter kit"},
	{"mystery shopper", 30, "Mystery-shopper style offer"},
	{"reshipping", 40, "Package reshipping offer"},
	{"quick money", 20, "Promises quick money"},
	{"easy money", 20, "Promises easy money"},
	{"unlimited earning", 20, "Promises unlimited earnings"},
	{"no experience necessary", 10, "No experience required"},
	{"immediate start", 5, "Pressure for an immediate start"},
	{"contact us on telegram", 25, "Recruits via Telegram"},
	{"contact us on whatsapp", 25, "Recruits via WhatsApp"},
}

// linkShorteners hide the real destination of a link; legitimate
// employers rarely use them in postings.
var linkShorteners = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.me", "wa.me", "cutt.ly", "rb.gy",
}

var freeMailDomains = []string{
	"@gmail.com", "@outlook.com", "@hotmail.com", "@yahoo.com", "@proton.me",
}

const (
	riskDangerThreshold  = 50
	riskWarningThreshold = 20
	maxRiskReasons       = 5
)

// ScoreRisk evaluates the listing's text and metadata against the
// scam heuristics. Deterministic and side-effect free; any "danger"
// outcome is later excluded from user-facing results unconditionally.
func ScoreRisk(l *domain.Listing) RiskAssessment {
	var score int
	var reasons []string

	combined := strings.ToLower(l.Title + " " + l.Company + " " + l.Description)

	for _, t := range scamTerms {
		if strings.Contains(combined, t.term) {
			score += t.points
			reasons = append(reasons, t.reason)
		}
	}

	if l.Company == "" {
		score += 15
		reasons = append(reasons, "No company name")
	}

	// Inflated pay with no experience asked is the classic lure.
	if l.AnnualSalaryMin() > 200000 && strings.Contains(combined, "no experience") {
		score += 30
		reasons = append(reasons, "Salary implausibly high for no experience")
	}

	if n := strings.Count(l.Title, "!"); n >= 2 {
		score += 10
		reasons = append(reasons, "Sensational title")
	}

	if r, pts := inspectLinks(l.Description); pts > 0 {
		score += pts
		reasons = append(reasons, r)
	}

	for _, d := range freeMailDomains {
		if strings.Contains(combined, d) {
			score += 15
			reasons = append(reasons, "Uses a free-mail contact address")
			break
		}
	}

	if len(reasons) > maxRiskReasons {
		reasons = reasons[:maxRiskReasons]
	}

	severity := domain.RiskClean
	switch {
	case score >= riskDangerThreshold:
		severity = domain.RiskDanger
	case score >= riskWarningThreshold:
		severity = domain.RiskWarning
	}

	return RiskAssessment{Severity: severity, Reasons: reasons, Score: score}
}

// inspectLinks parses the sanitized description HTML and flags link
// shorteners or raw-IP hosts among the hrefs. Parse failures are
// treated as "no links".
func inspectLinks(descriptionHTML string) (string, int) {
	if !strings.Contains(descriptionHTML, "href") {
		return "", 0
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(descriptionHTML))
	if err != nil {
		return "", 0
	}

	points := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		host := hostOf(href)
		if host == "" {
			return
		}
		for _, short := range linkShorteners {
			if host == short || strings.HasSuffix(host, "."+short) {
				points += 25
				return
			}
		}
		if net.ParseIP(host) != nil {
			points += 25
		}
	})

	if points == 0 {
		return "", 0
	}
	if points > 40 {
		points = 40
	}
	return "Contains suspicious links", points
}

func hostOf(href string) string {
	href = strings.TrimSpace(strings.ToLower(href))
	for _, prefix := range []string{"https://", "http://"} {
		href = strings.TrimPrefix(href, prefix)
	}
	if i := strings.IndexAny(href, "/?#"); i >= 0 {
		href = href[:i]
	}
	if i := strings.Index(href, ":"); i >= 0 {
		href = href[:i]
	}
	return href
}
