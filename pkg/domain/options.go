package domain

import "net/url"

// HistoryStrategy decides how a committed navigation is written to history.
type HistoryStrategy string

const (
	HistoryNone    HistoryStrategy = "none"
	HistoryPush    HistoryStrategy = "push"
	HistoryReplace HistoryStrategy = "replace"
)

// SameURLStrategy decides what happens when the target equals the current URL.
type SameURLStrategy string

const (
	SameURLIgnore SameURLStrategy = "ignore"
	SameURLReload SameURLStrategy = "reload"
)

// QueryParamsStrategy decides how query params combine with the current ones.
type QueryParamsStrategy string

const (
	QueryOverwrite QueryParamsStrategy = "overwrite"
	QueryPreserve  QueryParamsStrategy = "preserve"
	QueryMerge     QueryParamsStrategy = "merge"
)

// FragmentStrategy decides whether the current fragment survives a navigation.
type FragmentStrategy string

const (
	FragmentOverwrite FragmentStrategy = "overwrite"
	FragmentPreserve  FragmentStrategy = "preserve"
)

// RoutingMode controls whether instructions may name registered components directly.
type RoutingMode string

const (
	RoutingConfiguredOnly  RoutingMode = "configured-only"
	RoutingConfiguredFirst RoutingMode = "configured-first"
)

// SwapStrategy orders deactivation of old content and activation of new content.
type SwapStrategy string

const (
	SwapSequentialRemoveFirst SwapStrategy = "sequential-remove-first"
	SwapSequentialAddFirst    SwapStrategy = "sequential-add-first"
	SwapParallelRemoveFirst   SwapStrategy = "parallel-remove-first"
)

// RouterOptions configure a router for its whole lifetime.
type RouterOptions struct {
	UseURLFragmentHash  bool                `yaml:"use_url_fragment_hash" json:"use_url_fragment_hash" mapstructure:"use_url_fragment_hash"`
	HistoryStrategy     HistoryStrategy     `yaml:"history_strategy" json:"history_strategy" mapstructure:"history_strategy"`
	SameURLStrategy     SameURLStrategy     `yaml:"same_url_strategy" json:"same_url_strategy" mapstructure:"same_url_strategy"`
	QueryParamsStrategy QueryParamsStrategy `yaml:"query_params_strategy" json:"query_params_strategy" mapstructure:"query_params_strategy"`
	FragmentStrategy    FragmentStrategy    `yaml:"fragment_strategy" json:"fragment_strategy" mapstructure:"fragment_strategy"`
	RoutingMode         RoutingMode         `yaml:"routing_mode" json:"routing_mode" mapstructure:"routing_mode"`
	SwapStrategy        SwapStrategy        `yaml:"swap_strategy" json:"swap_strategy" mapstructure:"swap_strategy"`
	Title               string              `yaml:"title" json:"title" mapstructure:"title"`
	TitleSeparator      string              `yaml:"title_separator" json:"title_separator" mapstructure:"title_separator"`

	// HistoryStrategyFunc overrides HistoryStrategy per navigation when set.
	HistoryStrategyFunc func(Navigation) HistoryStrategy `yaml:"-" json:"-" mapstructure:"-"`
	// SameURLStrategyFunc overrides SameURLStrategy per navigation when set.
	SameURLStrategyFunc func(Navigation) SameURLStrategy `yaml:"-" json:"-" mapstructure:"-"`
}

// DefaultRouterOptions returns the options used when nothing is configured.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		HistoryStrategy:     HistoryPush,
		SameURLStrategy:     SameURLIgnore,
		QueryParamsStrategy: QueryOverwrite,
		FragmentStrategy:    FragmentOverwrite,
		RoutingMode:         RoutingConfiguredFirst,
		SwapStrategy:        SwapSequentialRemoveFirst,
		TitleSeparator:      " | ",
	}
}

// WithDefaults fills empty fields from DefaultRouterOptions.
func (o RouterOptions) WithDefaults() RouterOptions {
	d := DefaultRouterOptions()
	if o.HistoryStrategy == "" {
		o.HistoryStrategy = d.HistoryStrategy
	}
	if o.SameURLStrategy == "" {
		o.SameURLStrategy = d.SameURLStrategy
	}
	if o.QueryParamsStrategy == "" {
		o.QueryParamsStrategy = d.QueryParamsStrategy
	}
	if o.FragmentStrategy == "" {
		o.FragmentStrategy = d.FragmentStrategy
	}
	if o.RoutingMode == "" {
		o.RoutingMode = d.RoutingMode
	}
	if o.SwapStrategy == "" {
		o.SwapStrategy = d.SwapStrategy
	}
	if o.TitleSeparator == "" {
		o.TitleSeparator = d.TitleSeparator
	}
	return o
}

// NavigationOptions override router options for a single navigation.
// Empty strategy fields inherit the router's setting.
type NavigationOptions struct {
	// Context anchors a relative navigation. The router accepts a route context
	// or a component instance it currently hosts.
	Context             any                 `json:"-" mapstructure:"-"`
	Title               string              `json:"title,omitempty" mapstructure:"title"`
	State               map[string]any      `json:"state,omitempty" mapstructure:"state"`
	QueryParams         url.Values          `json:"query_params,omitempty" mapstructure:"query_params"`
	Fragment            string              `json:"fragment,omitempty" mapstructure:"fragment"`
	HistoryStrategy     HistoryStrategy     `json:"history_strategy,omitempty" mapstructure:"history_strategy"`
	SameURLStrategy     SameURLStrategy     `json:"same_url_strategy,omitempty" mapstructure:"same_url_strategy"`
	QueryParamsStrategy QueryParamsStrategy `json:"query_params_strategy,omitempty" mapstructure:"query_params_strategy"`
	FragmentStrategy    FragmentStrategy    `json:"fragment_strategy,omitempty" mapstructure:"fragment_strategy"`
}

// NavigationOption mutates NavigationOptions.
type NavigationOption func(*NavigationOptions)

// NewNavigationOptions applies opts to a zero NavigationOptions.
func NewNavigationOptions(opts ...NavigationOption) NavigationOptions {
	var o NavigationOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithContext anchors the navigation at a route context or hosted component.
func WithContext(c any) NavigationOption {
	return func(o *NavigationOptions) { o.Context = c }
}

// WithQueryParams sets query params to apply with the query params strategy.
func WithQueryParams(q url.Values) NavigationOption {
	return func(o *NavigationOptions) { o.QueryParams = q }
}

// WithFragment sets the URL fragment.
func WithFragment(f string) NavigationOption {
	return func(o *NavigationOptions) { o.Fragment = f }
}

// WithState attaches managed state to the history entry.
func WithState(s map[string]any) NavigationOption {
	return func(o *NavigationOptions) { o.State = s }
}

// WithTitle overrides the computed document title.
func WithTitle(t string) NavigationOption {
	return func(o *NavigationOptions) { o.Title = t }
}

// WithHistoryStrategy overrides the router's history strategy.
func WithHistoryStrategy(s HistoryStrategy) NavigationOption {
	return func(o *NavigationOptions) { o.HistoryStrategy = s }
}

// Replace is shorthand for WithHistoryStrategy(HistoryReplace).
func Replace() NavigationOption { return WithHistoryStrategy(HistoryReplace) }

// WithSameURLStrategy overrides the router's same-URL strategy.
func WithSameURLStrategy(s SameURLStrategy) NavigationOption {
	return func(o *NavigationOptions) { o.SameURLStrategy = s }
}

// WithQueryParamsStrategy overrides the router's query params strategy.
func WithQueryParamsStrategy(s QueryParamsStrategy) NavigationOption {
	return func(o *NavigationOptions) { o.QueryParamsStrategy = s }
}

// WithFragmentStrategy overrides the router's fragment strategy.
func WithFragmentStrategy(s FragmentStrategy) NavigationOption {
	return func(o *NavigationOptions) { o.FragmentStrategy = s }
}

// HistoryFor resolves the history strategy for a navigation.
func (o RouterOptions) HistoryFor(nav Navigation, override HistoryStrategy) HistoryStrategy {
	if override != "" {
		return override
	}
	if o.HistoryStrategyFunc != nil {
		return o.HistoryStrategyFunc(nav)
	}
	return o.HistoryStrategy
}

// SameURLFor resolves the same-URL strategy for a navigation.
func (o RouterOptions) SameURLFor(nav Navigation, override SameURLStrategy) SameURLStrategy {
	if override != "" {
		return override
	}
	if o.SameURLStrategyFunc != nil {
		return o.SameURLStrategyFunc(nav)
	}
	return o.SameURLStrategy
}
