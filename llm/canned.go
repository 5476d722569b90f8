package llm

import "strings"

// Canned fallback replies, keyed by keyword matching on the latest user
// message. These are the deterministic responses served when no API key is
// configured, so the pipeline and the chat room stay usable offline.

const technicalTemplate = `🔵 AI 1 - Technical Analysis Result:

Based on current market indicators:
- RSI: 65.2 (Neutral to Overbought)
- MACD: Bullish crossover detected
- Moving Average: Price above 20-day MA
- Bollinger Bands: Price near upper band
- Volume: Above average

SIGNAL: BUY with caution
Confidence: 75%
Recommended action: Wait for AI 2 validation`

const validationTemplate = `🟡 AI 2 - Signal Validation:

After cross-checking AI 1 analysis:
- Confirmed bullish momentum
- Risk/reward ratio: 1:2.5
- Market sentiment: Positive
- News impact: Neutral

VALIDATION: APPROVED
Forwarding to AI 3 for execution planning`

const executionTemplate = `🔴 AI 3 - Strategy Execution:

Trade Setup:
- Entry: Current market price
- Stop Loss: -2.5%
- Take Profit: +6.2%
- Position Size: 2% of portfolio
- Expected Pips: 45-50

STATUS: Ready for MT5 execution
Risk Level: Medium`

const newsTemplate = `🟢 AI 4 - News & Sentiment Analysis:

Market Sentiment Summary:
- Overall sentiment: Cautiously optimistic
- Key news: Fed meeting minutes released
- Economic indicators: Mixed signals
- Social sentiment: 62% bullish

Recommendation: Monitor closely for next 2-4 hours
Impact on current signals: Minimal`

const assistantTemplate = `🟢 AI Assistant: I'm here to help with your trading analysis. I can provide:

- Technical analysis of market indicators
- Signal validation and risk assessment
- Trade execution planning
- News sentiment analysis
- Real-time market insights

What would you like me to analyze for you?`

// cannedReply selects the deterministic template for the latest user message.
func cannedReply(messages []Message) string {
	if len(messages) == 0 {
		return assistantTemplate
	}
	input := strings.ToLower(messages[len(messages)-1].Content)

	switch {
	case strings.Contains(input, "technical") || strings.Contains(input, "analysis"):
		return technicalTemplate
	case strings.Contains(input, "validate") || strings.Contains(input, "signal"):
		return validationTemplate
	case strings.Contains(input, "execute") || strings.Contains(input, "trade"):
		return executionTemplate
	case strings.Contains(input, "news") || strings.Contains(input, "sentiment"):
		return newsTemplate
	default:
		return assistantTemplate
	}
}
