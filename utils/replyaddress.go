package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Reply addresses embed an order identifier into a mailbox local-part so
// that inbound email can be routed back to the originating order:
//
//	order-quote_0f3a9c1d2b4e@reply.printcraft.studio
//
// The mapping is stateless; it is recomputed identically at send time and
// at webhook parse time.

const replyLocalPrefix = "order-"

var replyAddressPattern = regexp.MustCompile(`^order-([A-Za-z0-9_-]+)@(.+)$`)

// ReplyAddress returns the reply-to mailbox address for an order.
func ReplyAddress(orderID, replyDomain string) string {
	return fmt.Sprintf("%s%s@%s", replyLocalPrefix, orderID, replyDomain)
}

// OrderIDFromAddress parses an order identifier out of a reply address.
// It returns the empty string when the address does not match the fixed
// format or belongs to a different domain. The domain comparison is
// case-insensitive; the local-part is not, since order identifiers are
// generated from a lowercase alphabet.
func OrderIDFromAddress(address, replyDomain string) string {
	match := replyAddressPattern.FindStringSubmatch(strings.TrimSpace(address))
	if match == nil {
		return ""
	}
	if !strings.EqualFold(match[2], replyDomain) {
		return ""
	}
	return match[1]
}
