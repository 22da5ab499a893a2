package ledger

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

func formatDuration(mins int) string {
	return fmt.Sprintf("%d:%02dh", mins/60, mins%60)
}

func formatDateBR(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1]
}

// Statement renders the payout message sent to a provider, entry by entry
// with a financial summary at the end.
func Statement(ps ProviderSummary, p Period) string {
	var b strings.Builder
	b.WriteString("*DEMONSTRATIVO DE REPASSE*\n")
	fmt.Fprintf(&b, "🗓️ Ref: %s\n\n", p.Label())
	b.WriteString("-----------------------------------\n")

	for _, e := range ps.Entries {
		icon := "⏳"
		if e.Status == sessions.CommissionPaid {
			icon = "✅"
		}
		end := e.EndTime
		if end == "" {
			end = "--:--"
		}
		fmt.Fprintf(&b, "%s *%s*\n", icon, formatDateBR(e.Date))
		fmt.Fprintf(&b, "⏰ Horário: %s às %s (%s)\n", e.StartTime, end, formatDuration(e.BilledDuration))
		fmt.Fprintf(&b, "👤 Cliente: %s\n", e.Client)
		if e.VIP && e.Nickname != "" {
			fmt.Fprintf(&b, "🏷️ Codinome: %s\n", e.Nickname)
		}
		fmt.Fprintf(&b, "💰 Repasse: *R$ %.0f.00*\n", e.Value)
		if e.Status == sessions.CommissionPaid && e.PaidAt != nil && e.PaymentMethod != nil {
			fmt.Fprintf(&b, "🏷️ Pago em: %s via %s\n", e.PaidAt.Format("02/01/2006"), *e.PaymentMethod)
		} else {
			b.WriteString("🏷️ Status: AGUARDANDO BAIXA\n")
		}
		b.WriteString("-----------------------------------\n")
	}

	b.WriteString("\n*RESUMO FINANCEIRO:*")
	fmt.Fprintf(&b, "\nTOTAL ACUMULADO: *R$ %.0f.00*", ps.TotalInPeriod)
	if ps.PendingAmount == 0 {
		b.WriteString("\nSTATUS: 100% LIQUIDADO ✅")
	} else {
		b.WriteString("\nSTATUS: PENDENTE DE BAIXA ⏳")
		fmt.Fprintf(&b, "\nSALDO A RECEBER: R$ %.0f.00", ps.PendingAmount)
	}
	return b.String()
}

// WhatsAppLink builds the wa.me deep link carrying the statement. Brazilian
// numbers get the country code prefixed; an empty phone yields a link that
// lets the operator pick the contact.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits != "" && !strings.HasPrefix(digits, "55") {
		digits = "55" + digits
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message)
}
