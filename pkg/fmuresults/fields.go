package fmuresults

import (
	"os"
	"os/user"
	"runtime"
	"time"
)

// Asset names the owner asset of a data object.
type Asset struct {
	Name string `yaml:"name" json:"name"`
}

// Ssdl carries legacy SSDL access settings. Kept for backwards
// compatibility with existing consumers.
type Ssdl struct {
	AccessLevel Classification `yaml:"access_level" json:"access_level"`
	RepInclude  bool           `yaml:"rep_include" json:"rep_include"`
}

// Access holds access control information for a data object.
type Access struct {
	Asset          Asset          `yaml:"asset" json:"asset"`
	Classification Classification `yaml:"classification,omitempty" json:"classification,omitempty"`
}

// SsdlAccess is the access block including the legacy SSDL sub-block, used
// on object-level metadata documents.
type SsdlAccess struct {
	Asset          Asset          `yaml:"asset" json:"asset"`
	Classification Classification `yaml:"classification,omitempty" json:"classification,omitempty"`
	Ssdl           Ssdl           `yaml:"ssdl" json:"ssdl"`
}

// MasterdataItem references an identifier/uuid pair governed by an external
// masterdata service.
type MasterdataItem struct {
	Identifier string `yaml:"identifier" json:"identifier"`
	UUID       string `yaml:"uuid" json:"uuid"`
}

// DiscoveryItem references a discovery known to the masterdata service.
type DiscoveryItem struct {
	ShortIdentifier string `yaml:"short_identifier" json:"short_identifier"`
	UUID            string `yaml:"uuid" json:"uuid"`
}

// Smda holds the externally governed reference lists. For each list the
// first item is the primary one.
type Smda struct {
	CoordinateSystem    MasterdataItem   `yaml:"coordinate_system" json:"coordinate_system"`
	Country             []MasterdataItem `yaml:"country" json:"country"`
	Discovery           []DiscoveryItem  `yaml:"discovery" json:"discovery"`
	Field               []MasterdataItem `yaml:"field" json:"field"`
	StratigraphicColumn MasterdataItem   `yaml:"stratigraphic_column" json:"stratigraphic_column"`
}

// Masterdata wraps the masterdata reference blocks.
type Masterdata struct {
	Smda Smda `yaml:"smda" json:"smda"`
}

// File references the data object as a file on disk. The relative path is
// the durable identifier of an object within a case and is present even
// when no physical file exists; the absolute path is only present when a
// file was actually written.
type File struct {
	AbsolutePath        string `yaml:"absolute_path,omitempty" json:"absolute_path,omitempty"`
	RelativePath        string `yaml:"relative_path" json:"relative_path"`
	RunpathRelativePath string `yaml:"runpath_relative_path,omitempty" json:"runpath_relative_path,omitempty"`
	ChecksumMD5         string `yaml:"checksum_md5" json:"checksum_md5"`
	SizeBytes           *int64 `yaml:"size_bytes,omitempty" json:"size_bytes,omitempty"`
}

// User identifies the acting user.
type User struct {
	ID string `yaml:"id" json:"id"`
}

// Case identifies the top-level collection of ensembles belonging to one
// study.
type Case struct {
	Name        string   `yaml:"name" json:"name"`
	User        User     `yaml:"user" json:"user"`
	UUID        string   `yaml:"uuid" json:"uuid"`
	Description []string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Ensemble identifies a named collection of realizations produced together.
// RestartFrom is a non-owning reference to the ensemble this one was
// restarted from, if any.
type Ensemble struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	UUID        string `yaml:"uuid" json:"uuid"`
	RestartFrom string `yaml:"restart_from,omitempty" json:"restart_from,omitempty"`
}

// Realization identifies one member simulation run within an ensemble.
// IsReference flags a user-designated reference realization; it is set
// through external tooling, never on export.
type Realization struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	UUID        string `yaml:"uuid" json:"uuid"`
	IsReference *bool  `yaml:"is_reference,omitempty" json:"is_reference,omitempty"`
}

// Aggregation describes a statistic computed across realizations.
type Aggregation struct {
	ID             string `yaml:"id" json:"id"`
	Operation      string `yaml:"operation" json:"operation"`
	RealizationIDs []int  `yaml:"realization_ids" json:"realization_ids"`
}

// Workflow refers to the subworkflow that exported this data object.
type Workflow struct {
	Reference string `yaml:"reference" json:"reference"`
}

// Model describes the model setup used.
type Model struct {
	Name        string   `yaml:"name" json:"name"`
	Revision    string   `yaml:"revision" json:"revision"`
	Description []string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Entity identifies data objects representing the same entity within a
// case; realizations and aggregations of one entity share this identifier.
type Entity struct {
	UUID string `yaml:"uuid" json:"uuid"`
}

// Experiment references the orchestrator experiment run.
type Experiment struct {
	ID string `yaml:"id" json:"id"`
}

// Ert holds information about the current ERT run.
type Ert struct {
	Experiment     Experiment `yaml:"experiment" json:"experiment"`
	SimulationMode string     `yaml:"simulation_mode,omitempty" json:"simulation_mode,omitempty"`
}

// Context carries the FMU context stage discriminator.
type Context struct {
	Stage FMUContext `yaml:"stage" json:"stage"`
}

// FMU is the block of attributes specific to FMU. Its shape is one of
// three mutually exclusive variants selected by Context.Stage: case (no
// ensemble or realization), ensemble (ensemble identity, optionally an
// aggregation) and realization (ensemble plus realization identity).
// Iteration is a deprecated mirror of Ensemble, synthesized after
// validation and never read back.
type FMU struct {
	Case        Case         `yaml:"case" json:"case"`
	Model       *Model       `yaml:"model,omitempty" json:"model,omitempty"`
	Context     Context      `yaml:"context" json:"context"`
	Ensemble    *Ensemble    `yaml:"ensemble,omitempty" json:"ensemble,omitempty"`
	Iteration   *Ensemble    `yaml:"iteration,omitempty" json:"iteration,omitempty"`
	Workflow    *Workflow    `yaml:"workflow,omitempty" json:"workflow,omitempty"`
	Aggregation *Aggregation `yaml:"aggregation,omitempty" json:"aggregation,omitempty"`
	Realization *Realization `yaml:"realization,omitempty" json:"realization,omitempty"`
	Entity      *Entity      `yaml:"entity,omitempty" json:"entity,omitempty"`
	Ert         *Ert         `yaml:"ert,omitempty" json:"ert,omitempty"`
}

// syncIteration mirrors the deprecated iteration field from the ensemble
// field. One-way synthesis for backwards compatibility; authoritative
// logic never reads it back.
func (f *FMU) syncIteration() {
	f.Iteration = f.Ensemble
}

// Display communicates presentation preferences from the data producer.
// No filtering logic may be placed on this block.
type Display struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// Version wraps a version string of some component.
type Version struct {
	Version string `yaml:"version" json:"version"`
}

// OperatingSystem describes the OS the export ran on.
type OperatingSystem struct {
	Hostname        string `yaml:"hostname" json:"hostname"`
	OperatingSystem string `yaml:"operating_system" json:"operating_system"`
	Release         string `yaml:"release" json:"release"`
	System          string `yaml:"system" json:"system"`
	Version         string `yaml:"version" json:"version"`
}

// SystemInformation describes the system a tracklog event occurred on.
type SystemInformation struct {
	FmuDataio       *Version         `yaml:"fmu-dataio,omitempty" json:"fmu-dataio,omitempty"`
	Komodo          *Version         `yaml:"komodo,omitempty" json:"komodo,omitempty"`
	OperatingSystem *OperatingSystem `yaml:"operating_system,omitempty" json:"operating_system,omitempty"`
}

// TracklogEvent records one lifecycle event on a metadata document.
type TracklogEvent struct {
	Datetime time.Time          `yaml:"datetime" json:"datetime"`
	Event    TrackLogEventType  `yaml:"event" json:"event"`
	User     User               `yaml:"user" json:"user"`
	Sysinfo  *SystemInformation `yaml:"sysinfo,omitempty" json:"sysinfo,omitempty"`
}

// KomodoReleaseEnv is the primary environment variable naming the managed
// software distribution release, with KomodoReleaseBackupEnv as fallback.
const (
	KomodoReleaseEnv       = "KOMODO_RELEASE"
	KomodoReleaseBackupEnv = "KOMODO_RELEASE_BACKUP"
)

// SynthesizeSysInfo derives system information from the process
// environment. It is a pure function over getenv and has no other inputs,
// so each document creation gets an independent snapshot.
func SynthesizeSysInfo(getenv func(string) string) *SystemInformation {
	sysinfo := &SystemInformation{
		FmuDataio: &Version{Version: ToolVersion},
		OperatingSystem: &OperatingSystem{
			Hostname:        hostname(),
			OperatingSystem: runtime.GOOS + "-" + runtime.GOARCH,
			Release:         runtime.Version(),
			System:          runtime.GOOS,
			Version:         runtime.Version(),
		},
	}
	release := getenv(KomodoReleaseEnv)
	if release == "" {
		release = getenv(KomodoReleaseBackupEnv)
	}
	if release != "" {
		sysinfo.Komodo = &Version{Version: release}
	}
	return sysinfo
}

// NewTracklogEvent synthesizes a tracklog event of the given type with a
// UTC timestamp, the current user and a fresh sysinfo snapshot.
func NewTracklogEvent(event TrackLogEventType) TracklogEvent {
	return TracklogEvent{
		Datetime: time.Now().UTC(),
		Event:    event,
		User:     User{ID: currentUser()},
		Sysinfo:  SynthesizeSysInfo(os.Getenv),
	}
}

// InitializeTracklog returns a tracklog holding a single 'created' event,
// the mandatory first entry of every new document.
func InitializeTracklog() []TracklogEvent {
	return []TracklogEvent{NewTracklogEvent(EventCreated)}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
