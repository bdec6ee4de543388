// Package registry provides the central "glue" for the plugin system.
//
// The Registry stores mappings between the string keys used in workflow
// configuration (e.g. "pre_sleep") and the descriptors of the compiled Go
// plugins that implement them, indexed by the phase category each plugin
// belongs to. Plugins register themselves at startup through the Module
// interface; no directory scanning or reflection is involved.
package registry
