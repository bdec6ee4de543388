package app

import (
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/modules/dockerapi"
	"github.com/forgeci/reactor/modules/envinput"
	"github.com/forgeci/reactor/modules/exportimage"
	"github.com/forgeci/reactor/modules/notify"
	"github.com/forgeci/reactor/modules/ocbuild"
	"github.com/forgeci/reactor/modules/pathinput"
	"github.com/forgeci/reactor/modules/presleep"
	"github.com/forgeci/reactor/modules/removeimage"
	"github.com/forgeci/reactor/modules/tagpush"
)

// coreModules is the definitive list of all plugin modules that are compiled
// into the reactor binary.
var coreModules = []registry.Module{
	&envinput.Module{},
	&pathinput.Module{},
	&presleep.Module{},
	&dockerapi.Module{},
	&ocbuild.Module{},
	&tagpush.Module{},
	&exportimage.Module{},
	&removeimage.Module{},
	&notify.Module{},
}
