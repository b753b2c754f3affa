package sources

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"careerintel/pkg/config"
)

// BuildRegistry constructs the adapter registry from configuration. This is
// the single place adapters are wired up; the registry is read-only after
// this returns.
func BuildRegistry(cfg config.Config, logger *logrus.Logger) (*Registry, error) {
	reg := NewRegistry()
	for _, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}

		var adapter Adapter
		switch sc.Kind {
		case "html":
			adapter = NewHTMLAdapter(sc, cfg.GlobalSettings, logger)
		case "api":
			adapter = NewRemoteOKAdapter(sc, cfg.GlobalSettings, logger)
		case "rss":
			adapter = NewRSSAdapter(sc, cfg.GlobalSettings, logger)
		case "reed":
			adapter = NewReedAdapter(sc, cfg.GlobalSettings, logger)
		default:
			return nil, fmt.Errorf("source %q: unknown kind %q", sc.Name, sc.Kind)
		}

		if err := reg.Register(adapter); err != nil {
			return nil, err
		}
		logger.Infof("Registered source adapter: %s (%s)", sc.Name, sc.Kind)
	}
	return reg, nil
}
