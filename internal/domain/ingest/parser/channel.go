package parser

import (
	"regexp"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// channelRules is an ordered rule list; the first family that matches the
// upper-cased narrative wins. Order matters: UPI narratives often embed POS
// terminal codes, so instant transfer is tested first.
var channelRules = []struct {
	channel transaction.Channel
	re      *regexp.Regexp
}{
	{transaction.ChannelInstantTransfer, regexp.MustCompile(`\bUPI\b`)},
	{transaction.ChannelWire, regexp.MustCompile(`\bNEFT\b|\bRTGS\b`)},
	{transaction.ChannelImmediateTransfer, regexp.MustCompile(`\bIMPS\b`)},
	{transaction.ChannelATM, regexp.MustCompile(`\bATM\b|\bATW\b|\bCSH\b|CASH\s*WDL`)},
	{transaction.ChannelPointOfSale, regexp.MustCompile(`\bPOS\b|\bECOM\b|\bVISA\b|\bMASTERCARD\b|CARD\s*PURCHASE`)},
	{transaction.ChannelCheque, regexp.MustCompile(`\bCHQ\b|\bCHEQUE\b|\bCLG\b`)},
}

// ClassifyChannel maps a raw narrative to the closed payment-channel enum.
func ClassifyChannel(narrative string) transaction.Channel {
	upper := strings.ToUpper(narrative)
	for _, rule := range channelRules {
		if rule.re.MatchString(upper) {
			return rule.channel
		}
	}
	return transaction.ChannelOther
}
