package telebotConverter

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KotFed0t/btc_moonshot_bot/internal/model"
	"github.com/KotFed0t/btc_moonshot_bot/internal/portfolioCalculator"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	tele "gopkg.in/telebot.v4"
)

// Menu labels are part of the bot's public contract, do not rename.
const (
	AddPurchaseLabel = "➕ Add purchase"
	ProgressLabel    = "📊 Progress"
	HistoryLabel     = "📅 History"
	MoonshotLabel    = "🚀 Moonshot"
)

const (
	AccessDeniedMsg     = "❌ Sorry, this bot is available to its owner only."
	MainMenuMsg         = "🏠 Main menu:"
	AskAmountMsg        = "How much %s did you buy? 🪙"
	AskPriceMsg         = "At what price did you buy? 💵"
	AskTargetPriceMsg   = "🚀 How high can %s go?"
	InvalidNumberMsg    = "⚠️ Enter a valid positive number."
	NoPurchasesMsg      = "⚠️ You have no purchases yet."
	CancelledMsg        = "❎ Cancelled."
	NothingToCancelMsg  = "Nothing to cancel."
	TemporaryFailureMsg = "⚠️ Service is temporarily unavailable, please try again later. Your input is kept."
	InternalErrMsg      = "⚠️ Something went wrong..."
	ExportLinkMsg       = "📎 The export is too large for Telegram, download it here: %s"
)

// telegram message length limit
const maxMessageLen = 4096

const historyDateLayout = "2006-01-02 15:04"

var (
	MainMenu       = &tele.ReplyMarkup{ResizeKeyboard: true}
	BtnAddPurchase = MainMenu.Text(AddPurchaseLabel)
	BtnProgress    = MainMenu.Text(ProgressLabel)
	BtnHistory     = MainMenu.Text(HistoryLabel)
	BtnMoonshot    = MainMenu.Text(MoonshotLabel)
)

func init() {
	MainMenu.Reply(
		MainMenu.Row(BtnAddPurchase, BtnProgress),
		MainMenu.Row(BtnHistory, BtnMoonshot),
	)
}

// Formatter renders calculator results for the chat. All rounding happens here.
type Formatter struct {
	printer        *message.Printer
	currencySymbol string
	assetSymbol    string
}

func NewFormatter(fiatCurrency, assetSymbol string) *Formatter {
	symbol := strings.ToUpper(fiatCurrency) + " "
	if currency := money.GetCurrency(strings.ToUpper(fiatCurrency)); currency != nil && currency.Grapheme != "" {
		symbol = currency.Grapheme
	}

	return &Formatter{
		printer:        message.NewPrinter(language.English),
		currencySymbol: symbol,
		assetSymbol:    assetSymbol,
	}
}

// Money formats a fiat amount without fractional part: $40,000 or -$1,250.
func (f *Formatter) Money(d decimal.Decimal) string {
	rounded := d.Round(0)
	if rounded.IsNegative() {
		return "-" + f.currencySymbol + f.groupDigits(rounded.Abs())
	}
	return f.currencySymbol + f.groupDigits(rounded)
}

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// groupDigits expects a non-negative integer value.
func (f *Formatter) groupDigits(d decimal.Decimal) string {
	if d.LessThanOrEqual(maxInt64) {
		return f.printer.Sprintf("%d", d.IntPart())
	}

	// за пределами int64 группируем разряды вручную
	digits := d.String()
	var sb strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	sb.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		sb.WriteByte(',')
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// SignedMoney always carries the sign: +$10,000.
func (f *Formatter) SignedMoney(d decimal.Decimal) string {
	if d.Round(0).IsNegative() {
		return f.Money(d)
	}
	return "+" + f.Money(d)
}

func (f *Formatter) Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func (f *Formatter) SignedPercent(d decimal.Decimal) string {
	s := d.StringFixed(1)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

func (f *Formatter) Units(d decimal.Decimal) string {
	return d.StringFixed(8)
}

func (f *Formatter) Greeting() string {
	return fmt.Sprintf(
		"🚀 Hi! I am your personal %s Moonshot Bot.\nMy purpose is to help you reach %s by buying %s regularly.",
		f.assetSymbol, f.Money(portfolioCalculator.Goal), f.assetSymbol,
	)
}

func (f *Formatter) AskAmount() string {
	return fmt.Sprintf(AskAmountMsg, f.assetSymbol)
}

func (f *Formatter) AskTargetPrice() string {
	return fmt.Sprintf(AskTargetPriceMsg, f.assetSymbol)
}

func (f *Formatter) PurchaseAdded(p model.Purchase) string {
	return fmt.Sprintf(
		"💰 Purchase added!\nAmount: %s %s\nPrice: %s\nTotal: %s",
		f.Units(p.Amount), f.assetSymbol, f.Money(p.Price), f.Money(p.Total),
	)
}

func (f *Formatter) Progress(s model.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("📊 Your portfolio:\n")
	sb.WriteString(fmt.Sprintf("- Total invested: %s\n", f.Money(s.TotalInvested)))
	sb.WriteString(fmt.Sprintf("- Current value: %s (%s, %s)\n", f.Money(s.CurrentValue), f.SignedMoney(s.Profit), f.SignedPercent(s.ProfitPercent)))
	sb.WriteString(fmt.Sprintf("- %s held: %s\n", f.assetSymbol, f.Units(s.TotalUnits)))
	sb.WriteString(fmt.Sprintf("- Left to goal (%s): %s\n\n", f.Money(s.Goal), f.Money(portfolioCalculator.RemainingToGoal(s))))
	sb.WriteString(fmt.Sprintf("🎯 Progress: %s", f.Percent(s.ProgressPercent)))

	return sb.String()
}

func (f *Formatter) Moonshot(m model.Moonshot) string {
	return fmt.Sprintf(
		"🚀 If %s reaches %s:\n- Your portfolio will be worth: %s\n- Profit vs now: %s",
		f.assetSymbol, f.Money(m.TargetPrice), f.Money(m.HypotheticalValue), f.SignedMoney(m.ProfitVsNow),
	)
}

// History splits the listing into messages that fit the telegram limit.
func (f *Formatter) History(purchases []model.Purchase, loc *time.Location) []string {
	if len(purchases) == 0 {
		return []string{NoPurchasesMsg}
	}

	const header = "📅 Purchase history:\n\n"

	messages := make([]string, 0, 1)
	var sb strings.Builder
	sb.WriteString(header)

	for _, p := range purchases {
		entry := fmt.Sprintf(
			"Date: %s\nAmount: %s %s\nPrice: %s\nTotal: %s\n—\n",
			p.DtCreate.In(loc).Format(historyDateLayout), f.Units(p.Amount), f.assetSymbol, f.Money(p.Price), f.Money(p.Total),
		)

		if utf8.RuneCountInString(sb.String())+utf8.RuneCountInString(entry) > maxMessageLen {
			messages = append(messages, sb.String())
			sb.Reset()
		}
		sb.WriteString(entry)
	}

	return append(messages, sb.String())
}
