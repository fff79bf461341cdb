// Package metadata maps source-format project paths to metadata API components.
//
// Classification is data driven: a Registry associates every top-level folder
// under the project root with a metadata type and a naming Rule, and a second,
// smaller table does the same for the sub-folders of an object definition.
package metadata

import (
	"sort"
)

// Rule selects how a component name is derived from a path.
type Rule int

const (
	// RuleDefault names the component after the final path segment, cut at the first dot.
	RuleDefault Rule = iota
	// RuleBundle names the component after the bundle's own folder.
	RuleBundle
	// RuleContainer delegates to the object sub-folder registry.
	RuleContainer
	// RuleFlattened keeps the relative path (folders included) up to the first dot.
	RuleFlattened
	// RuleDottedRecord keeps a dotted Type.Record key and strips the record suffix.
	RuleDottedRecord
	// RuleObjectMember names a member of an object as Object.Member.
	RuleObjectMember
)

// MarshalText renders the rule by name.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// String returns the rule name used in listings.
func (r Rule) String() string {
	switch r {
	case RuleDefault:
		return "default"
	case RuleBundle:
		return "bundle"
	case RuleContainer:
		return "container"
	case RuleFlattened:
		return "flattened"
	case RuleDottedRecord:
		return "dotted-record"
	case RuleObjectMember:
		return "object-member"
	default:
		return "unknown"
	}
}

const (
	// DefaultRoot is the project-root marker of a source-format project.
	DefaultRoot = "force-app/main/default"

	// ObjectDefinitionSuffix identifies an object's own definition file.
	ObjectDefinitionSuffix = ".object-meta.xml"

	// RecordMarker separates a custom metadata record key from its file suffix.
	RecordMarker = ".md-meta"
)

// Entry is one registry row.
type Entry struct {
	Folder string `json:"folder"`
	Type   string `json:"type"`
	Rule   Rule   `json:"rule"`
}

type binding struct {
	typ  string
	rule Rule
}

// Registry is an immutable folder -> (type, rule) lookup for both levels of the
// source tree. The zero value classifies nothing; use DefaultRegistry.
type Registry struct {
	folders map[string]binding
	objects map[string]binding
}

var folderTypes = map[string]string{
	"applications":                 "CustomApplication",
	"approvalProcesses":            "ApprovalProcess",
	"assignmentRules":              "AssignmentRules",
	"audience":                     "Audience",
	"aura":                         "AuraDefinitionBundle",
	"cachePartitions":              "PlatformCachePartition",
	"classes":                      "ApexClass",
	"contentassets":                "ContentAsset",
	"cspTrustedSites":              "CspTrustedSite",
	"customMetadata":               "CustomMetadata",
	"customPermissions":            "CustomPermission",
	"dashboards":                   "Dashboard",
	"documentGenerationSettings":   "DocumentGenerationSetting",
	"duplicateRules":               "DuplicateRule",
	"email":                        "EmailTemplate",
	"entitlementProcesses":         "EntitlementProcess",
	"experiences":                  "ExperienceBundle",
	"externalServiceRegistrations": "ExternalServiceRegistration",
	"flexipages":                   "FlexiPage",
	"flows":                        "Flow",
	"globalValueSets":              "GlobalValueSet",
	"groups":                       "Group",
	"labels":                       "CustomLabels",
	"layouts":                      "Layout",
	"lwc":                          "LightningComponentBundle",
	"matchingRules":                "MatchingRules",
	"messageChannels":              "LightningMessageChannel",
	"milestoneTypes":               "MilestoneType",
	"mutingpermissionsets":         "MutingPermissionSet",
	"navigationMenus":              "NavigationMenu",
	"networks":                     "Network",
	"notificationtypes":            "CustomNotificationType",
	"objects":                      "CustomObject",
	"objectTranslations":           "CustomObjectTranslation",
	"OmniInteractionConfig":        "OmniInteractionConfig",
	"pages":                        "ApexPage",
	"pathAssistants":               "PathAssistant",
	"permissionsetgroups":          "PermissionSetGroup",
	"permissionsets":               "PermissionSet",
	"platformEventChannelMembers":  "PlatformEventChannelMember",
	"profiles":                     "Profile",
	"queueRoutingConfigs":          "QueueRoutingConfig",
	"queues":                       "Queue",
	"quickActions":                 "QuickAction",
	"recordActionDeployments":      "RecordActionDeployment",
	"relationshipGraphDefinitions": "RelationshipGraphDefinition",
	"remoteSiteSettings":           "RemoteSiteSetting",
	"reports":                      "Report",
	"reportTypes":                  "ReportType",
	"roles":                        "Role",
	"servicePresenceStatuses":      "ServicePresenceStatus",
	"settings":                     "Settings",
	"sharingRules":                 "SharingRules",
	"sharingSets":                  "SharingSet",
	"siteDotComSites":              "SiteDotCom",
	"sites":                        "CustomSite",
	"skills":                       "Skill",
	"standardValueSets":            "StandardValueSet",
	"staticresources":              "StaticResource",
	"tabs":                         "CustomTab",
	"translations":                 "Translations",
	"triggers":                     "ApexTrigger",
	"wave":                         "WaveDataflow",
	"workflow":                     "Workflow",
	"workSkillRoutings":            "WorkSkillRouting",
}

// folderRules lists every folder whose naming does not follow RuleDefault.
var folderRules = map[string]Rule{
	"lwc":            RuleBundle,
	"aura":           RuleBundle,
	"objects":        RuleContainer,
	"email":          RuleFlattened,
	"dashboards":     RuleFlattened,
	"reports":        RuleFlattened,
	"customMetadata": RuleDottedRecord,
}

var objectFolderTypes = map[string]string{
	"businessProcesses": "BusinessProcess",
	"compactLayouts":    "CompactLayout",
	"fields":            "CustomField",
	"fieldSets":         "FieldSet",
	"listViews":         "ListView",
	"recordTypes":       "RecordType",
	"validationRules":   "ValidationRule",
	"webLinks":          "WebLink",
}

var defaultRegistry = buildDefault()

func buildDefault() Registry {
	r := Registry{
		folders: make(map[string]binding, len(folderTypes)),
		objects: make(map[string]binding, len(objectFolderTypes)),
	}
	for folder, typ := range folderTypes {
		rule, ok := folderRules[folder]
		if !ok {
			rule = RuleDefault
		}
		r.folders[folder] = binding{typ: typ, rule: rule}
	}
	for folder, typ := range objectFolderTypes {
		r.objects[folder] = binding{typ: typ, rule: RuleObjectMember}
	}
	return r
}

// DefaultRegistry returns the built-in registry.
func DefaultRegistry() Registry {
	return defaultRegistry
}

// Extend returns a copy of r with additional folder and object sub-folder
// entries. Built-in entries win over extensions with the same folder name.
func (r Registry) Extend(folders, objectFolders map[string]string) Registry {
	out := Registry{
		folders: make(map[string]binding, len(r.folders)+len(folders)),
		objects: make(map[string]binding, len(r.objects)+len(objectFolders)),
	}
	for k, v := range r.folders {
		out.folders[k] = v
	}
	for k, v := range r.objects {
		out.objects[k] = v
	}
	for folder, typ := range folders {
		if _, exists := out.folders[folder]; exists || folder == "" || typ == "" {
			continue
		}
		out.folders[folder] = binding{typ: typ, rule: RuleDefault}
	}
	for folder, typ := range objectFolders {
		if _, exists := out.objects[folder]; exists || folder == "" || typ == "" {
			continue
		}
		out.objects[folder] = binding{typ: typ, rule: RuleObjectMember}
	}
	return out
}

// Lookup returns the type and rule registered for a top-level folder.
func (r Registry) Lookup(folder string) (string, Rule, bool) {
	b, ok := r.folders[folder]
	return b.typ, b.rule, ok
}

// LookupObject returns the type registered for an object sub-folder.
func (r Registry) LookupObject(folder string) (string, bool) {
	b, ok := r.objects[folder]
	return b.typ, ok
}

// Len returns the number of top-level folder entries.
func (r Registry) Len() int {
	return len(r.folders)
}

// Folders returns the top-level entries sorted by folder name.
func (r Registry) Folders() []Entry {
	return sortedEntries(r.folders)
}

// ObjectFolders returns the object sub-folder entries sorted by folder name.
func (r Registry) ObjectFolders() []Entry {
	return sortedEntries(r.objects)
}

func sortedEntries(m map[string]binding) []Entry {
	out := make([]Entry, 0, len(m))
	for folder, b := range m {
		out = append(out, Entry{Folder: folder, Type: b.typ, Rule: b.rule})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folder < out[j].Folder })
	return out
}
