// Package site runs the assembly pipeline that turns a region document and
// its plugin folders into the Result consumed by the page template.
package site

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prusikmapping/GeositeFramework/internal/about"
	"github.com/prusikmapping/GeositeFramework/internal/colors"
	"github.com/prusikmapping/GeositeFramework/internal/logfields"
	"github.com/prusikmapping/GeositeFramework/internal/metrics"
	"github.com/prusikmapping/GeositeFramework/internal/navigation"
	"github.com/prusikmapping/GeositeFramework/internal/plugin"
	"github.com/prusikmapping/GeositeFramework/internal/region"
	"github.com/prusikmapping/GeositeFramework/internal/schema"
)

// Request names one site to assemble.
type Request struct {
	// Site is the site name used for logging, metrics and output layout.
	// Defaults to the name of the directory containing the region file.
	Site string

	// RegionPath is the region configuration file.
	RegionPath string

	// BaseDir optionally overrides the directory relative paths in the
	// region document resolve against.
	BaseDir string
}

// Assembler runs the assembly pipeline. One Assembler may serve many
// Assemble calls; each call works on its own state.
type Assembler struct {
	validator *schema.Validator
	colors    *colors.Resolver
	recorder  metrics.Recorder
}

// New creates an Assembler using the given document validator.
func New(v *schema.Validator) *Assembler {
	return &Assembler{
		validator: v,
		colors:    colors.NewResolver(colors.Defaults()),
		recorder:  metrics.NoopRecorder{},
	}
}

// SetRecorder injects a metrics recorder (optional). Returns the assembler
// for chaining.
func (a *Assembler) SetRecorder(r metrics.Recorder) *Assembler {
	if r == nil {
		a.recorder = metrics.NoopRecorder{}
		return a
	}
	a.recorder = r
	return a
}

// assemblyState carries intermediate values between stages of one run.
type assemblyState struct {
	req    Request
	log    *slog.Logger
	report *Report

	region      *region.Document
	plugins     []plugin.Descriptor
	merged      *plugin.MergedConfig
	pair        colors.Pair
	titleMain   navigation.Link
	titleDetail navigation.Link
	headerLinks []navigation.Link
	regionLinks []navigation.Link
	aboutPage   *about.Page

	result *Result
}

// Assemble runs the full pipeline for one site. On any stage failure the
// error is returned with the failing stage attached and no Result is
// produced.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	if req.RegionPath == "" {
		return nil, errors.New("assemble: region path required")
	}
	site := req.Site
	if site == "" {
		site = filepath.Base(filepath.Dir(req.RegionPath))
	}

	st := &assemblyState{
		req:    req,
		log:    slog.With(logfields.Site(site)),
		report: newReport(site),
	}
	st.log.Info("starting site assembly", logfields.Region(req.RegionPath))

	stages := []namedStage{
		{StageLoadRegion, a.stageLoadRegion},
		{StageDiscover, a.stageDiscoverPlugins},
		{StageOrder, a.stageOrderPlugins},
		{StageMergeConfig, a.stageMergeConfig},
		{StageExtractLinks, a.stageExtractLinks},
		{StageResolveColors, a.stageResolveColors},
		{StageRenderAbout, a.stageRenderAbout},
		{StageAssembleResult, a.stageAssembleResult},
	}

	err := a.runStages(ctx, st, stages)
	a.recorder.ObserveAssemblyDuration(site, time.Since(st.report.Start))
	if err != nil {
		outcome := OutcomeFailed
		label := metrics.OutcomeFailed
		var se *StageError
		if errors.As(err, &se) && se.Kind == StageErrorCanceled {
			outcome = OutcomeCanceled
			label = metrics.OutcomeCanceled
		}
		st.report.finish(outcome)
		a.recorder.IncAssemblyOutcome(label)
		st.log.Error("site assembly failed", logfields.Error(err))
		return nil, err
	}

	st.report.finish(OutcomeSuccess)
	st.result.Report = st.report
	a.recorder.IncAssemblyOutcome(metrics.OutcomeSuccess)
	st.log.Info("site assembly completed",
		logfields.Count(len(st.result.PluginFolderNames)),
		logfields.DurationMS(st.report.Duration().Seconds()*1000))
	return st.result, nil
}

func (a *Assembler) stageLoadRegion(_ context.Context, st *assemblyState) error {
	doc, err := a.validator.LoadAndValidate(st.req.RegionPath, schema.KindRegion)
	if err != nil {
		return err
	}
	reg, err := region.ParseWithBase(doc, st.req.BaseDir)
	if err != nil {
		return err
	}
	st.region = reg
	return nil
}

func (a *Assembler) stageDiscoverPlugins(_ context.Context, st *assemblyState) error {
	descriptors, err := plugin.NewDiscoverer(a.validator).Discover(st.region.PluginDirectories)
	if err != nil {
		return err
	}
	st.plugins = descriptors
	st.report.PluginCount = len(descriptors)
	a.recorder.SetPluginsDiscovered(st.report.Site, len(descriptors))
	st.log.Debug("plugins discovered", logfields.Count(len(descriptors)))
	return nil
}

func (a *Assembler) stageOrderPlugins(_ context.Context, st *assemblyState) error {
	st.plugins = plugin.Reorder(st.plugins, st.region.PluginOrder)
	return nil
}

func (a *Assembler) stageMergeConfig(_ context.Context, st *assemblyState) error {
	merged, err := plugin.MergeConfigs(st.plugins)
	if err != nil {
		return err
	}
	st.merged = merged
	return nil
}

func (a *Assembler) stageExtractLinks(_ context.Context, st *assemblyState) error {
	st.titleMain = navigation.Extract(st.region.TitleMain)
	st.titleDetail = navigation.Extract(st.region.TitleDetail)
	st.headerLinks = navigation.ExtractList(st.region.HeaderLinks)
	st.regionLinks = navigation.ExtractList(st.region.RegionLinks)
	return nil
}

func (a *Assembler) stageResolveColors(_ context.Context, st *assemblyState) error {
	pair, err := a.colors.Resolve(st.region.Colors)
	if err != nil {
		return err
	}
	st.pair = pair
	return nil
}

func (a *Assembler) stageRenderAbout(_ context.Context, st *assemblyState) error {
	if st.region.AboutPage == "" {
		return nil
	}
	page, err := about.Load(st.region.AboutPage)
	if err != nil {
		return err
	}
	st.aboutPage = page
	return nil
}

func (a *Assembler) stageAssembleResult(_ context.Context, st *assemblyState) error {
	folders := make([]string, len(st.plugins))
	ids := make([]string, len(st.plugins))
	for i, desc := range st.plugins {
		folders[i] = desc.FolderName
		ids[i] = desc.ModuleID
	}

	regionJSON, err := augmentRegionJSON(st.region.Source.Raw, folders)
	if err != nil {
		return err
	}

	st.result = &Result{
		Site:              st.report.Site,
		PluginFolderNames: folders,
		PluginModuleIDs:   ids,
		ModuleIDList:      moduleIDList(ids),
		VariableNameList:  variableNameList(len(ids)),
		RegionJSON:        regionJSON,
		Colors:            st.pair,
		CSSURLs:           st.merged.CSS,
		UseClauses:        st.merged.UseClauses,
		UseClauseText:     st.merged.UseClauseText(),
		TitleMain:         st.titleMain,
		TitleDetail:       st.titleDetail,
		HeaderLinks:       st.headerLinks,
		RegionLinks:       st.regionLinks,
		GoogleAnalyticsID: st.region.GoogleAnalyticsID,
		Plugins:           st.plugins,
		About:             st.aboutPage,
	}
	return nil
}
