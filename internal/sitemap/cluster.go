package sitemap

import (
	"fmt"
	"net/url"
	"strings"
)

// ClusterResult counts sitemap locations per directory segment.
type ClusterResult struct {
	ClusterBy     string         `json:"cluster_by"`
	Clusters      map[string]int `json:"clusters"`
	TotalURLs     int            `json:"total_urls"`
	ClusteredURLs int            `json:"clustered_urls"`
}

const rootCluster = "root"

// Cluster buckets each location by its level-th non-empty path segment
// (1-based). Locations without that segment fall into "root"; locations that
// are not absolute URLs are counted in TotalURLs but not clustered.
func Cluster(locs []string, level int) ClusterResult {
	res := ClusterResult{
		ClusterBy: fmt.Sprintf("dir_%d", level),
		Clusters:  make(map[string]int),
		TotalURLs: len(locs),
	}

	for _, loc := range locs {
		u, err := url.Parse(loc)
		if err != nil || !u.IsAbs() {
			continue
		}
		res.Clusters[clusterKey(u, level)]++
		res.ClusteredURLs++
	}
	return res
}

func clusterKey(u *url.URL, level int) string {
	var parts []string
	for _, p := range strings.Split(u.EscapedPath(), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if level < 1 || level > len(parts) {
		return rootCluster
	}
	return parts[level-1]
}
