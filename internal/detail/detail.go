// Package detail renders the chart page shown for a selected pair.
package detail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultPair     = "BTC/USDT"
	DefaultExchange = "BINANCE"
)

var chartTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Pair}}</title>
    <style>body { margin: 0; padding: 0; background-color: #ffffff; }</style>
</head>
<body>
    <div class="tradingview-widget-container">
        <div id="tradingview_chart"></div>
        <script type="text/javascript" src="https://s3.tradingview.com/tv.js"></script>
        <script type="text/javascript">
        new TradingView.widget(
        {
            "width": "100%",
            "height": "100%",
            "symbol": "{{.Exchange}}:{{.Symbol}}",
            "interval": "60",
            "timezone": "Etc/UTC",
            "theme": "light",
            "style": "1",
            "locale": "en",
            "toolbar_bg": "#f1f3f6",
            "enable_publishing": false,
            "allow_symbol_change": true,
            "container_id": "tradingview_chart"
        }
        );
        </script>
    </div>
    <style>
        html, body, .tradingview-widget-container { height: 100%; width: 100%; }
    </style>
</body>
</html>
`))

// Page is a rendered chart view.
type Page struct {
	Pair   string
	Symbol string
	HTML   []byte
}

// Surface displays a rendered page.
type Surface interface {
	Display(page Page) error
}

// ChartSymbol converts a trading pair to the chart widget's symbol by
// dropping every "/". An empty pair yields the default pair's symbol.
func ChartSymbol(pair string) string {
	if pair == "" {
		pair = DefaultPair
	}
	return strings.ReplaceAll(pair, "/", "")
}

// Router builds chart pages. It holds no per-request state.
type Router struct {
	exchange    string
	defaultPair string
	logger      *zap.Logger
}

// NewRouter creates a router. Empty arguments fall back to the defaults.
func NewRouter(exchange, defaultPair string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if defaultPair == "" {
		defaultPair = DefaultPair
	}
	return &Router{exchange: exchange, defaultPair: defaultPair, logger: logger}
}

// Render produces the chart page for pair.
func (r *Router) Render(pair string) (Page, error) {
	if pair == "" {
		pair = r.defaultPair
	}
	symbol := ChartSymbol(pair)

	var buf bytes.Buffer
	err := chartTemplate.Execute(&buf, map[string]string{
		"Pair":     pair,
		"Symbol":   symbol,
		"Exchange": r.exchange,
	})
	if err != nil {
		return Page{}, fmt.Errorf("rendering chart for %s: %w", pair, err)
	}

	return Page{Pair: pair, Symbol: symbol, HTML: buf.Bytes()}, nil
}

// OpenDetail renders pair and hands the page to surface.
func (r *Router) OpenDetail(pair string, surface Surface) error {
	page, err := r.Render(pair)
	if err != nil {
		return err
	}
	r.logger.Debug("opening detail", zap.String("pair", page.Pair), zap.String("symbol", page.Symbol))
	return surface.Display(page)
}
