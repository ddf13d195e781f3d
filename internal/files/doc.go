// Package files provides file system discovery and report writing.
//
// Discovery lists the keyword exports (.xlsx, .xls) found in a data
// directory in file-name order and looks individual exports up by name.
// Manager writes generated reports below a base directory.
//
//	discovery := files.NewDiscovery("/srv/rankpulse")
//	exports, err := discovery.FindSpreadsheets("data")
//
//	manager := files.NewManager("/srv/rankpulse/reports", logger)
//	path, err := manager.WriteFile("top_keywords_week1.csv", data)
package files
