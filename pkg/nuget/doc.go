// Package nuget models the versioning rules of the NuGet package ecosystem:
// package versions, version ranges and target frameworks.
//
// Versions are semantic versions with an optional revision component.
// Ranges use NuGet's interval notation and normalize to the form shown on
// graph edges ("[1.1.0, )"). Frameworks follow the NuGet folder naming
// scheme, and [Reduce] picks the nearest compatible asset folder for a
// target the way restore does.
package nuget
