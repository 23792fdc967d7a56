// Package nuget is a NuGet v3 feed client.
//
// [Client] implements [resolve.Source] on top of three feed resources:
//
//   - the service index, which names the other resources
//   - the registration hive (RegistrationsBaseUrl), which holds each
//     version's dependency groups per target framework
//   - the flat container (PackageBaseAddress), which serves .nupkg archives
//
// Dependency groups are reduced to the one nearest the requested framework.
// Archives are downloaded only to list their lib/ folders and the framework
// assemblies their nuspec declares; the listing, not the archive, is cached.
//
//	src := nuget.NewClient(backend, 24*time.Hour, nuget.DefaultIndexURL)
//	info, err := src.ResolveDependencies(ctx, id, framework)
//
// [resolve.Source]: github.com/matzehuels/depends/pkg/resolve.Source
package nuget
