package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/restpipe/config"
	"github.com/kbukum/restpipe/credentials"
	"github.com/kbukum/restpipe/logger"
	"github.com/kbukum/restpipe/observability"
	"github.com/kbukum/restpipe/policy"
	"github.com/kbukum/restpipe/rest"
	"github.com/kbukum/restpipe/serializer"
)

// SendResult is what the send command prints.
type SendResult struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Status  int               `json:"status" yaml:"status"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
}

func newSendCommand(v *viper.Viper) *cobra.Command {
	var (
		data    string
		headers []string
	)

	cmd := &cobra.Command{
		Use:   "send METHOD PATH",
		Short: "Send one request through the client pipeline",
		Example: `  restcli send GET /subscriptions -u https://management.azure.com/
  restcli send POST /widgets --data '{"name":"a"}' -H 'X-Trace:on' -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			client, shutdown, err := buildClient(ctx, v)
			if err != nil {
				return err
			}
			defer shutdown()

			var body any
			if data != "" {
				body = data
			}
			req, err := client.NewRequest(strings.ToUpper(args[0]), args[1], body)
			if err != nil {
				return err
			}
			if data != "" && req.Header.Get("Content-Type") == "" {
				req.Header.Set("Content-Type", "application/json")
			}
			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q, expected NAME:VALUE", h)
				}
				req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
			}

			resp, err := client.Send(ctx, req)
			if err != nil {
				return err
			}
			raw, err := resp.Bytes()
			if err != nil {
				return err
			}

			result := SendResult{
				Method:  req.Method,
				URL:     req.URL.String(),
				Status:  resp.StatusCode,
				Headers: flattenHeader(resp.Header),
				Body:    decodeBody(raw),
			}
			if err := printSendResult(cmd.OutOrStdout(), v.GetString("output"), result); err != nil {
				return err
			}
			if !resp.IsSuccess() {
				return fmt.Errorf("request failed with HTTP %d", resp.StatusCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header NAME:VALUE (repeatable)")
	return cmd
}

// buildClient loads options for restcli, applies flags on top and builds a
// client. The returned function flushes telemetry exporters.
func buildClient(ctx context.Context, v *viper.Viper) (*rest.Client, func(), error) {
	loadOpts := []config.LoaderOption{config.WithOverrides(overrides(v))}
	if path := v.GetString("config"); path != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(path))
	}
	if path := v.GetString("env-file"); path != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(path))
	}
	opts, err := rest.LoadOptions(serviceName, loadOpts...)
	if err != nil {
		return nil, nil, err
	}

	b := rest.NewBuilder().
		WithSerializerAdapter(serializer.JSON{}).
		WithResponseBuilderFactory(rest.DefaultResponseBuilderFactory{}).
		WithOptions(opts).
		WithLogger(logger.GetGlobalLogger()).
		AddCustomPolicy(policy.RequestID(policy.HeaderRequestID))
	if token := v.GetString("token"); token != "" {
		b = b.WithCredentials(credentials.Bearer(token))
	}

	shutdown := func() {}
	if endpoint := v.GetString("otlp-endpoint"); endpoint != "" {
		var err error
		shutdown, err = initTelemetry(ctx, endpoint)
		if err != nil {
			return nil, nil, err
		}
		metrics, err := observability.NewClientMetrics(observability.Meter())
		if err != nil {
			shutdown()
			return nil, nil, err
		}
		b = b.AddCustomPolicy(policy.Tracing(nil)).AddCustomPolicy(policy.Metrics(metrics))
	}

	client, err := b.Build()
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	return client, shutdown, nil
}

func initTelemetry(ctx context.Context, endpoint string) (func(), error) {
	tcfg := observability.DefaultTracerConfig(serviceName)
	tcfg.Endpoint = endpoint
	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, err
	}

	mcfg := observability.DefaultMeterConfig(serviceName)
	mcfg.Endpoint = endpoint
	mp, err := observability.InitMeter(ctx, mcfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func() {
		log := logger.Get("observability")
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("tracer shutdown failed", logger.MergeWithError(nil, err))
		}
		if err := mp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("meter shutdown failed", logger.MergeWithError(nil, err))
		}
	}, nil
}

func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

// decodeBody returns JSON bodies as values and anything else as text.
func decodeBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

func printSendResult(w io.Writer, format string, r SendResult) error {
	switch format {
	case OutputFormatJSON, OutputFormatYAML:
		return encode(w, format, r)
	case OutputFormatTable, "":
		rows := [][]string{
			{"Method", r.Method},
			{"URL", r.URL},
			{"Status", fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status))},
		}
		names := make([]string, 0, len(r.Headers))
		for k := range r.Headers {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			rows = append(rows, []string{k, r.Headers[k]})
		}
		if r.Body != nil {
			rows = append(rows, []string{"Body", bodyText(r.Body)})
		}
		return renderTable(w, []string{"Property", "Value"}, rows)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func bodyText(body any) string {
	if s, ok := body.(string); ok {
		return s
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprint(body)
	}
	return string(data)
}
