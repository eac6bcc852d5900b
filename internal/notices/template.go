package notices

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/haythemsaa/boxibox-backend/pkg/enums"
)

// TemplateContext carries the named values substituted into notice templates.
// Every field maps to one placeholder; there is no dynamic key set.
type TemplateContext struct {
	CustomerName string
	DebtAmount   decimal.Decimal
	BoxNumber    string
	SiteName     string
	CompanyName  string
	DaysOverdue  int
	DeadlineDate string
	AuctionDate  string
	PaymentURL   string
}

var placeholderRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Render substitutes {{ key }} placeholders from the context into the
// template. Unknown placeholders are left verbatim so that broken operator
// templates stay visible instead of silently losing content.
func Render(template string, ctx TemplateContext) string {
	values := map[string]string{
		"customer_name": ctx.CustomerName,
		"debt_amount":   formatAmount(ctx.DebtAmount),
		"box_number":    ctx.BoxNumber,
		"site_name":     ctx.SiteName,
		"company_name":  ctx.CompanyName,
		"days_overdue":  strconv.Itoa(ctx.DaysOverdue),
		"deadline_date": ctx.DeadlineDate,
		"auction_date":  ctx.AuctionDate,
		"payment_url":   ctx.PaymentURL,
	}

	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		if value, ok := values[key]; ok {
			return value
		}
		return match
	})
}

func formatAmount(amount decimal.Decimal) string {
	// French convention: comma decimal separator, trailing euro sign.
	return strings.ReplaceAll(amount.StringFixed(2), ".", ",") + " €"
}

// SubjectFor returns the email subject used for a notice type.
func SubjectFor(noticeType enums.NoticeType) string {
	switch noticeType {
	case enums.NoticeTypeFirstWarning:
		return "Rappel de paiement - Action requise"
	case enums.NoticeTypeSecondWarning:
		return "Deuxième avis - Paiement en retard"
	case enums.NoticeTypeFinalNotice:
		return "MISE EN DEMEURE - Dernier avis avant vente aux enchères"
	case enums.NoticeTypeAuctionScheduled:
		return "Avis de vente aux enchères programmée"
	case enums.NoticeTypeAuctionReminder:
		return "Rappel - Vente aux enchères demain"
	case enums.NoticeTypeAuctionResult:
		return "Résultat de la vente aux enchères"
	default:
		return "Notification importante concernant votre stockage"
	}
}

// DefaultFirstNoticeTemplate is used when the tenant has not configured one.
const DefaultFirstNoticeTemplate = `Bonjour {{ customer_name }},

Nous constatons un retard de paiement de {{ days_overdue }} jours sur votre box {{ box_number }} ({{ site_name }}).
Montant dû : {{ debt_amount }}.

Merci de régulariser votre situation avant le {{ deadline_date }} : {{ payment_url }}

{{ company_name }}`

// DefaultFinalNoticeTemplate is the mise en demeure fallback.
const DefaultFinalNoticeTemplate = `Bonjour {{ customer_name }},

MISE EN DEMEURE : malgré nos relances, votre dette de {{ debt_amount }} sur le box {{ box_number }} ({{ site_name }}) reste impayée depuis {{ days_overdue }} jours.

Sans paiement avant le {{ deadline_date }}, le contenu de votre box sera vendu aux enchères.
Paiement : {{ payment_url }}

{{ company_name }}`

// DefaultScheduledTemplate announces the scheduled sale.
const DefaultScheduledTemplate = `Bonjour {{ customer_name }},

La vente aux enchères du contenu de votre box {{ box_number }} ({{ site_name }}) est programmée pour le {{ auction_date }}.
Vous pouvez encore régulariser votre dette de {{ debt_amount }} avant cette date : {{ payment_url }}

{{ company_name }}`

// DefaultReminderTemplate is sent shortly before an auction closes.
const DefaultReminderTemplate = `Bonjour {{ customer_name }},

Rappel : la vente aux enchères du contenu de votre box {{ box_number }} se termine le {{ auction_date }}.

{{ company_name }}`
