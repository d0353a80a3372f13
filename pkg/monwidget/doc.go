// Package monwidget embeds the desktop metrics widget in another program.
// It owns the monitors, the optional overlay window and the config
// watcher, and exposes their state for status reporting.
//
// # Basic Usage
//
//	w, err := monwidget.NewFromFile(monwidget.DefaultConfigPath(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
// # Headless Mode
//
// With Options.Headless the monitors refresh on a background ticker and
// no window is opened. Snapshot returns the latest frame parameters:
//
//	w, _ := monwidget.New(monwidget.DefaultConfig(), &monwidget.Options{Headless: true})
//	w.Start()
//	cpu := w.Snapshot().Utilization.CPUUsage
//
// # Configuration Reload
//
// ReloadConfig re-reads the configuration file and applies it without
// restarting. Options.WatchConfig does the same whenever the file changes.
//
// # Error Handling
//
// Monitor failures never stop the widget. The failures of the most recent
// refresh are available from Errors; runtime errors such as a failed
// reload are also delivered to the ErrorHandler.
package monwidget
