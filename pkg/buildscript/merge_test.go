package buildscript

import (
	"testing"

	"github.com/platinummonkey/capsync/pkg/plugins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pluginsBuildGradle = `apply plugin: 'com.android.library'

android {
    compileSdkVersion 28
}

dependencies {
    implementation fileTree(dir: 'src/main/libs', include: ['*.jar'])
    // SUB-PROJECT DEPENDENCIES START

    // SUB-PROJECT DEPENDENCIES END
}

// PLUGIN GRADLE EXTENSIONS START
// PLUGIN GRADLE EXTENSIONS END
`

func pref(name, def string) plugins.Preference {
	return plugins.Preference{Name: name, Default: def, HasDefault: true}
}

func TestCollect(t *testing.T) {
	maps := &plugins.Manifest{
		ID: "cordova-plugin-maps",
		Platforms: map[string]*plugins.PlatformElements{
			"android": {
				Frameworks: []plugins.Framework{
					{Src: "com.google.android.gms:play-services-maps:$MAPS_VERSION"},
					{Src: "src/android/maps.gradle", Custom: true, Type: plugins.FrameworkGradleReference},
					{Src: "src/android/other.gradle", Custom: true},
					{Src: "com.example:typed", Type: "aar"},
				},
				Preferences: []plugins.Preference{pref("MAPS_VERSION", "17.0.0")},
			},
			"ios": {
				Frameworks: []plugins.Framework{{Src: "GoogleMaps"}},
			},
		},
	}
	push := &plugins.Manifest{
		ID: "cordova-plugin-push",
		Platforms: map[string]*plugins.PlatformElements{
			"android": {
				Frameworks: []plugins.Framework{
					{Src: "com.google.firebase:firebase-messaging:$FCM_VERSION"},
					{Src: "push.gradle", Custom: true, Type: plugins.FrameworkGradleReference},
				},
				Preferences: []plugins.Preference{{Name: "FCM_VERSION"}},
			},
		},
	}
	webOnly := &plugins.Manifest{ID: "web-only"}

	in := Collect([]*plugins.Manifest{maps, webOnly, push}, "android", "gradle-files")

	assert.Equal(t, []string{
		"com.google.android.gms:play-services-maps:$MAPS_VERSION",
		"com.google.firebase:firebase-messaging:$FCM_VERSION",
	}, in.Frameworks)
	assert.Equal(t, []string{
		"gradle-files/cordova-plugin-maps/maps.gradle",
		"gradle-files/cordova-plugin-push/push.gradle",
	}, in.ApplyPaths)
	assert.Equal(t, []plugins.Preference{pref("MAPS_VERSION", "17.0.0"), {Name: "FCM_VERSION"}}, in.Preferences)
	assert.Equal(t, []string{"FCM_VERSION"}, in.Unresolved())
}

func TestMerge(t *testing.T) {
	in := MergeInput{
		Frameworks:  []string{"com.google.android.gms:play-services-maps:$MAPS_VERSION", "androidx.core:core:1.0.0"},
		Preferences: []plugins.Preference{pref("MAPS_VERSION", "17.0.0")},
		ApplyPaths:  []string{"gradle-files/cordova-plugin-maps/maps.gradle"},
	}

	out, err := Merge(in, pluginsBuildGradle)
	require.NoError(t, err)
	assert.Equal(t, `apply plugin: 'com.android.library'

android {
    compileSdkVersion 28
}

dependencies {
    implementation fileTree(dir: 'src/main/libs', include: ['*.jar'])
    // SUB-PROJECT DEPENDENCIES START
    implementation "com.google.android.gms:play-services-maps:17.0.0"
    implementation "androidx.core:core:1.0.0"
    // SUB-PROJECT DEPENDENCIES END
}

// PLUGIN GRADLE EXTENSIONS START
apply from: "gradle-files/cordova-plugin-maps/maps.gradle"
// PLUGIN GRADLE EXTENSIONS END
`, out)

	again, err := Merge(in, out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

// TestMerge_EmptyInput tests the camera case: no frameworks and no fragments empty both regions
func TestMerge_EmptyInput(t *testing.T) {
	populated, err := Merge(MergeInput{
		Frameworks: []string{"a:b:1"},
		ApplyPaths: []string{"gradle-files/x/x.gradle"},
	}, pluginsBuildGradle)
	require.NoError(t, err)

	out, err := Merge(MergeInput{}, populated)
	require.NoError(t, err)

	deps, err := DependenciesRegion.Extract(out)
	require.NoError(t, err)
	assert.Equal(t, "\n    ", deps)

	ext, err := ExtensionsRegion.Extract(out)
	require.NoError(t, err)
	assert.Equal(t, "\n", ext)
	assert.NotContains(t, out, "implementation \"a:b:1\"")
	assert.NotContains(t, out, "apply from")
}

func TestMerge_PlaceholderSubstitution(t *testing.T) {
	tests := []struct {
		name string
		in   MergeInput
		want string
	}{
		{
			name: "default substituted everywhere",
			in: MergeInput{
				Frameworks:  []string{"g:a:$foo", "g:b:$foo"},
				Preferences: []plugins.Preference{pref("foo", "1.0")},
			},
			want: "    implementation \"g:a:1.0\"\n    implementation \"g:b:1.0\"",
		},
		{
			name: "unresolved placeholder kept verbatim",
			in: MergeInput{
				Frameworks:  []string{"g:a:$UNDECLARED", "g:b:$NODEFAULT"},
				Preferences: []plugins.Preference{{Name: "NODEFAULT"}},
			},
			want: "    implementation \"g:a:$UNDECLARED\"\n    implementation \"g:b:$NODEFAULT\"",
		},
		{
			name: "longer name is not clobbered by its prefix",
			in: MergeInput{
				Frameworks:  []string{"g:a:$MAPS_VERSION", "g:b:$MAPS"},
				Preferences: []plugins.Preference{pref("MAPS", "x"), pref("MAPS_VERSION", "2.0")},
			},
			want: "    implementation \"g:a:2.0\"\n    implementation \"g:b:x\"",
		},
		{
			name: "substituted values are not rescanned",
			in: MergeInput{
				Frameworks:  []string{"g:a:$A"},
				Preferences: []plugins.Preference{pref("A", "$B"), pref("B", "nope")},
			},
			want: "    implementation \"g:a:$B\"",
		},
		{
			name: "first default wins for duplicate names",
			in: MergeInput{
				Frameworks:  []string{"g:a:$V"},
				Preferences: []plugins.Preference{{Name: "V"}, pref("V", "1"), pref("V", "2")},
			},
			want: "    implementation \"g:a:1\"",
		},
		{
			name: "override wins over default",
			in: MergeInput{
				Frameworks:  []string{"g:a:$V"},
				Preferences: []plugins.Preference{pref("V", "1"), {Name: "W"}},
				Overrides:   map[string]string{"V": "9", "W": "unused"},
			},
			want: "    implementation \"g:a:9\"",
		},
		{
			name: "empty default substitutes to empty",
			in: MergeInput{
				Frameworks:  []string{"g:a:$V"},
				Preferences: []plugins.Preference{pref("V", "")},
			},
			want: "    implementation \"g:a:\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.DependencyBlock())
		})
	}
}

func TestMerge_PlaceholdersOnlyInDependencies(t *testing.T) {
	in := MergeInput{
		Preferences: []plugins.Preference{pref("ID", "x")},
		ApplyPaths:  []string{"gradle-files/$ID/a.gradle"},
	}
	assert.Equal(t, `apply from: "gradle-files/$ID/a.gradle"`, in.ApplyBlock())
}

func TestMerge_StructuralErrors(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		in       MergeInput
		wantErr  error
	}{
		{
			name:     "no markers",
			existing: "dependencies {\n}\n",
			wantErr:  ErrMarkerNotFound,
		},
		{
			name:     "missing extensions end",
			existing: "// SUB-PROJECT DEPENDENCIES START\n// SUB-PROJECT DEPENDENCIES END\n// PLUGIN GRADLE EXTENSIONS START\n",
			wantErr:  ErrMarkerNotFound,
		},
		{
			name:     "marker in generated content",
			existing: pluginsBuildGradle,
			in:       MergeInput{Frameworks: []string{"x // SUB-PROJECT DEPENDENCIES END"}},
			wantErr:  ErrMarkerInContent,
		},
		{
			name:     "marker through preference value",
			existing: pluginsBuildGradle,
			in: MergeInput{
				Frameworks:  []string{"g:a:$V"},
				Preferences: []plugins.Preference{{Name: "V"}},
				Overrides:   map[string]string{"V": "PLUGIN GRADLE EXTENSIONS START"},
			},
			wantErr: ErrMarkerInContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Merge(tt.in, tt.existing)
			assert.Empty(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsStructuralError(err))
		})
	}
}

func TestMergeInput_Unresolved(t *testing.T) {
	in := MergeInput{
		Preferences: []plugins.Preference{{Name: "B"}, {Name: "A"}, pref("C", "1"), {Name: "B"}, {Name: "D"}},
		Overrides:   map[string]string{"D": "4"},
	}
	assert.Equal(t, []string{"A", "B"}, in.Unresolved())
}
