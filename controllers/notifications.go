package controllers

import (
	"fmt"
	"html"
	"strings"

	"github.com/printcraft-studio/printcraft-api/config"
	"github.com/printcraft-studio/printcraft-api/models"
	"github.com/printcraft-studio/printcraft-api/services"
	"github.com/printcraft-studio/printcraft-api/utils"
)

// Customer-facing notification emails. Every email sets its reply-to to the
// order's synthetic mailbox so inbound replies can be routed back to the
// thread by the webhook.

// buildMessageNotificationEmail renders a new admin message plus the thread
// history so the customer has full context without visiting the site.
func buildMessageNotificationEmail(order *models.Order, thread []models.Message, cfg *config.Config) *services.OutboundEmail {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<p>Hi %s,</p>", html.EscapeString(order.CustomerName)))
	b.WriteString(fmt.Sprintf("<p>You have a new message about your order <strong>%s</strong>. Reply to this email to respond.</p>", html.EscapeString(order.ID)))
	b.WriteString("<hr>")

	// Newest first, the way mail clients render threads
	for i := len(thread) - 1; i >= 0; i-- {
		m := thread[i]
		sender := "You"
		if m.Sender == models.SenderAdmin {
			sender = "Printcraft Studio"
		}
		b.WriteString(fmt.Sprintf("<p><strong>%s</strong> (%s)</p>", sender, m.CreatedAt.Format("Jan 2, 2006 3:04 PM")))
		if m.Body != nil && *m.Body != "" {
			b.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(*m.Body)))
		}
		if m.ImageURL != nil && *m.ImageURL != "" {
			b.WriteString(fmt.Sprintf(`<p><img src=%q alt="attachment" style="max-width:400px"></p>`, *m.ImageURL))
		}
	}

	return &services.OutboundEmail{
		From:    cfg.FromAddress,
		To:      []string{order.CustomerEmail},
		Subject: fmt.Sprintf("New message about your order %s", order.ID),
		ReplyTo: utils.ReplyAddress(order.ID, cfg.ReplyDomain),
		HTML:    b.String(),
	}
}

// buildStatusEmail notifies the customer of a lifecycle transition.
func buildStatusEmail(order *models.Order, cfg *config.Config) *services.OutboundEmail {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<p>Hi %s,</p>", html.EscapeString(order.CustomerName)))
	b.WriteString(fmt.Sprintf("<p>Your order <strong>%s</strong> is now <strong>%s</strong>.</p>",
		html.EscapeString(order.ID), html.EscapeString(order.Status)))
	if order.Price != nil {
		b.WriteString(fmt.Sprintf("<p>Quoted price: $%.2f</p>", *order.Price))
	}
	b.WriteString("<p>Reply to this email if you have any questions.</p>")

	return &services.OutboundEmail{
		From:    cfg.FromAddress,
		To:      []string{order.CustomerEmail},
		Subject: fmt.Sprintf("Your order %s is %s", order.ID, order.Status),
		ReplyTo: utils.ReplyAddress(order.ID, cfg.ReplyDomain),
		HTML:    b.String(),
	}
}
